// Package errors provides the standardized error taxonomy and handling
// core for the PostForge backend: stable error kinds, user-safe mappings,
// typed application errors, sanitized logging and retry support.
package errors

// ErrorKind is a stable, machine-readable identifier for one specific
// failure condition. Kinds never change once released; clients key on them.
type ErrorKind string

const (
	// Authentication
	KindAuthTokenExpired       ErrorKind = "AUTH_TOKEN_EXPIRED"
	KindAuthTokenInvalid       ErrorKind = "AUTH_TOKEN_INVALID"
	KindAuthCredentialsInvalid ErrorKind = "AUTH_CREDENTIALS_INVALID"

	// Authorization
	KindPermissionDenied     ErrorKind = "AUTHZ_PERMISSION_DENIED"
	KindSubscriptionRequired ErrorKind = "AUTHZ_SUBSCRIPTION_REQUIRED"

	// Validation
	KindInvalidInput ErrorKind = "VAL_INVALID_INPUT"

	// File operations
	KindFileTooLarge    ErrorKind = "FILE_TOO_LARGE"
	KindFileTypeInvalid ErrorKind = "FILE_TYPE_INVALID"
	KindFileUploadFail  ErrorKind = "FILE_UPLOAD_FAILED"

	// Database
	KindDBConnectionFailed ErrorKind = "DB_CONNECTION_FAILED"
	KindDBQueryFailed      ErrorKind = "DB_QUERY_FAILED"
	KindDBRecordNotFound   ErrorKind = "DB_RECORD_NOT_FOUND"
	KindDBDuplicateEntry   ErrorKind = "DB_DUPLICATE_ENTRY"
	KindDBSchemaMismatch   ErrorKind = "DB_SCHEMA_MISMATCH"

	// Network
	KindNetworkUnreachable ErrorKind = "NET_CONNECTION_FAILED"
	KindNetworkTimeout     ErrorKind = "NET_TIMEOUT"

	// External services
	KindAIServiceFailed      ErrorKind = "EXT_AI_SERVICE_FAILED"
	KindAIRateLimited        ErrorKind = "EXT_AI_RATE_LIMITED"
	KindLinkedInFailed       ErrorKind = "EXT_LINKEDIN_FAILED"
	KindLinkedInTokenExpired ErrorKind = "EXT_LINKEDIN_TOKEN_EXPIRED"
	KindStripeFailed         ErrorKind = "EXT_STRIPE_FAILED"

	// Payment
	KindCardDeclined      ErrorKind = "PAY_CARD_DECLINED"
	KindInsufficientFunds ErrorKind = "PAY_INSUFFICIENT_FUNDS"
	KindPaymentFailed     ErrorKind = "PAY_PROCESSING_FAILED"

	// Rate limiting
	KindCreditsExhausted ErrorKind = "RATE_CREDITS_EXHAUSTED"
	KindAPIThrottled     ErrorKind = "RATE_API_THROTTLED"

	// Resources
	KindQuotaExceeded ErrorKind = "RES_QUOTA_EXCEEDED"

	// Internal
	KindUnexpected    ErrorKind = "INT_UNEXPECTED"
	KindConfiguration ErrorKind = "INT_CONFIGURATION"
)

// allKinds enumerates every declared kind. The mapping table in mapping.go
// is checked against this list at init; adding a kind here without a mapping
// entry fails fast at process start.
var allKinds = []ErrorKind{
	KindAuthTokenExpired, KindAuthTokenInvalid, KindAuthCredentialsInvalid,
	KindPermissionDenied, KindSubscriptionRequired,
	KindInvalidInput,
	KindFileTooLarge, KindFileTypeInvalid, KindFileUploadFail,
	KindDBConnectionFailed, KindDBQueryFailed, KindDBRecordNotFound,
	KindDBDuplicateEntry, KindDBSchemaMismatch,
	KindNetworkUnreachable, KindNetworkTimeout,
	KindAIServiceFailed, KindAIRateLimited, KindLinkedInFailed,
	KindLinkedInTokenExpired, KindStripeFailed,
	KindCardDeclined, KindInsufficientFunds, KindPaymentFailed,
	KindCreditsExhausted, KindAPIThrottled,
	KindQuotaExceeded,
	KindUnexpected, KindConfiguration,
}

// AllKinds returns a copy of every declared error kind.
func AllKinds() []ErrorKind {
	out := make([]ErrorKind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ErrorCategory is the coarse grouping an ErrorKind belongs to. The category
// determines which constructor family may raise the kind.
type ErrorCategory string

const (
	CategoryAuthentication  ErrorCategory = "AUTHENTICATION"
	CategoryAuthorization   ErrorCategory = "AUTHORIZATION"
	CategoryValidation      ErrorCategory = "VALIDATION"
	CategoryDatabase        ErrorCategory = "DATABASE"
	CategoryNetwork         ErrorCategory = "NETWORK"
	CategoryExternalService ErrorCategory = "EXTERNAL_SERVICE"
	CategoryFileOperation   ErrorCategory = "FILE_OPERATION"
	CategoryPayment         ErrorCategory = "PAYMENT"
	CategoryRateLimit       ErrorCategory = "RATE_LIMIT"
	CategoryResource        ErrorCategory = "RESOURCE"
	CategoryInternal        ErrorCategory = "INTERNAL"
)

// ErrorSeverity is an ordered logging/alerting level. Higher is worse.
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}
