package errors

import (
	"errors"
	"fmt"
)

// AppError is the typed application error carried from the failure site up
// to the global handler. The technical message and cause are internal-only;
// everything user-facing derives from the kind's mapping.
type AppError struct {
	Kind      ErrorKind
	Technical string
	Details   map[string]interface{}

	status int
	cause  error
}

func (e *AppError) Error() string {
	if e.Technical != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Technical)
	}
	return fmt.Sprintf("%s: %s", e.Kind, UserMessage(e.Kind))
}

func (e *AppError) Unwrap() error { return e.cause }

// Category returns the category derived from the kind's mapping.
func (e *AppError) Category() ErrorCategory { return MappingFor(e.Kind).Category }

// Severity returns the severity derived from the kind's mapping.
func (e *AppError) Severity() ErrorSeverity { return MappingFor(e.Kind).Severity }

// HTTPStatus returns the mapped status unless overridden via WithStatus.
func (e *AppError) HTTPStatus() int {
	if e.status != 0 {
		return e.status
	}
	return MappingFor(e.Kind).HTTPStatus
}

// UserMessage returns the mapped user-safe message. Never the technical one.
func (e *AppError) UserMessage() string { return UserMessage(e.Kind) }

// Transient reports whether the kind is classified as likely to succeed on
// retry.
func (e *AppError) Transient() bool { return MappingFor(e.Kind).Transient }

// WithStatus overrides the mapped HTTP status.
func (e *AppError) WithStatus(status int) *AppError {
	if status != 0 {
		e.status = status
	}
	return e
}

// WithDetail attaches one caller-supplied context value (resource ids and
// the like). Values pass through sanitization before they are persisted.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// WithCause records the underlying error for errors.Is/As chains.
func (e *AppError) WithCause(cause error) *AppError {
	e.cause = cause
	return e
}

// ToMap serializes the error for internal consumers. The technical message
// is included only when a trusted caller (admin log viewer) asks for it;
// the public API surface never does.
func (e *AppError) ToMap(includeTechnical bool) map[string]interface{} {
	out := map[string]interface{}{
		"error_code":   string(e.Kind),
		"user_message": e.UserMessage(),
	}
	if len(e.Details) > 0 {
		out["details"] = Sanitize(e.Details)
	}
	if includeTechnical && e.Technical != "" {
		out["technical_message"] = e.Technical
	}
	return out
}

// newError is the single construction path; raising a kind through the wrong
// category family is a programming error and panics at construction.
func newError(category ErrorCategory, kind ErrorKind, technical string) *AppError {
	if got := CategoryOf(kind); got != category {
		panic(fmt.Sprintf("errors: kind %s belongs to %s, raised as %s", kind, got, category))
	}
	return &AppError{Kind: kind, Technical: technical}
}

// Constructor families, one per category.

func NewAuthenticationError(kind ErrorKind, technical string) *AppError {
	return newError(CategoryAuthentication, kind, technical)
}

func NewAuthorizationError(kind ErrorKind, technical string) *AppError {
	return newError(CategoryAuthorization, kind, technical)
}

func NewValidationError(kind ErrorKind, technical string) *AppError {
	return newError(CategoryValidation, kind, technical)
}

func NewDatabaseError(kind ErrorKind, technical string) *AppError {
	return newError(CategoryDatabase, kind, technical)
}

func NewNetworkError(kind ErrorKind, technical string) *AppError {
	return newError(CategoryNetwork, kind, technical)
}

func NewExternalServiceError(kind ErrorKind, technical string) *AppError {
	return newError(CategoryExternalService, kind, technical)
}

func NewFileOperationError(kind ErrorKind, technical string) *AppError {
	return newError(CategoryFileOperation, kind, technical)
}

func NewPaymentError(kind ErrorKind, technical string) *AppError {
	return newError(CategoryPayment, kind, technical)
}

func NewRateLimitError(kind ErrorKind, technical string) *AppError {
	return newError(CategoryRateLimit, kind, technical)
}

func NewResourceError(kind ErrorKind, technical string) *AppError {
	return newError(CategoryResource, kind, technical)
}

func NewInternalError(kind ErrorKind, technical string) *AppError {
	return newError(CategoryInternal, kind, technical)
}

// Leaf constructors encoding default kinds and derived details.

func NewTokenExpiredError() *AppError {
	return NewAuthenticationError(KindAuthTokenExpired, "")
}

func NewTokenInvalidError(technical string) *AppError {
	return NewAuthenticationError(KindAuthTokenInvalid, technical)
}

func NewCredentialsInvalidError() *AppError {
	return NewAuthenticationError(KindAuthCredentialsInvalid, "")
}

func NewPermissionDeniedError(resource, action string) *AppError {
	return NewAuthorizationError(KindPermissionDenied, "").
		WithDetail("resource", resource).
		WithDetail("action", action)
}

func NewSubscriptionRequiredError(feature string) *AppError {
	return NewAuthorizationError(KindSubscriptionRequired, "").
		WithDetail("feature", feature)
}

func NewFileTooLargeError(maxSizeMB, actualSizeMB float64) *AppError {
	return NewFileOperationError(KindFileTooLarge, "").
		WithDetail("max_size_mb", maxSizeMB).
		WithDetail("actual_size_mb", actualSizeMB)
}

func NewFileTypeInvalidError(allowedTypes []string, actualType string) *AppError {
	return NewFileOperationError(KindFileTypeInvalid, "").
		WithDetail("allowed_types", allowedTypes).
		WithDetail("actual_type", actualType)
}

func NewRecordNotFoundError(resourceType, resourceID string) *AppError {
	return NewDatabaseError(KindDBRecordNotFound, "").
		WithDetail("resource_type", resourceType).
		WithDetail("resource_id", resourceID)
}

func NewDuplicateEntryError(field string) *AppError {
	return NewDatabaseError(KindDBDuplicateEntry, "").
		WithDetail("field", field)
}

func NewAIServiceError(provider, technical string) *AppError {
	return NewExternalServiceError(KindAIServiceFailed, technical).
		WithDetail("provider", provider)
}

// NewAIRateLimitError carries the provider's retry-after seconds so clients
// can back off without parsing messages.
func NewAIRateLimitError(provider string, retryAfter int) *AppError {
	return NewExternalServiceError(KindAIRateLimited, "").
		WithDetail("provider", provider).
		WithDetail("retry_after", retryAfter)
}

func NewLinkedInAPIError(technical string) *AppError {
	return NewExternalServiceError(KindLinkedInFailed, technical)
}

// NewLinkedInTokenExpiredError is distinct from generic session expiry: the
// remediation is reconnecting the LinkedIn account, not signing in again.
func NewLinkedInTokenExpiredError() *AppError {
	return NewExternalServiceError(KindLinkedInTokenExpired, "")
}

func NewStripeError(technical string) *AppError {
	return NewExternalServiceError(KindStripeFailed, technical)
}

// NewPaymentFailedError maps the processor's decline code onto the payment
// taxonomy; unrecognized codes land on the generic processing failure.
func NewPaymentFailedError(declineCode string) *AppError {
	kind := KindPaymentFailed
	switch declineCode {
	case "insufficient_funds":
		kind = KindInsufficientFunds
	case "card_declined", "generic_decline", "do_not_honor", "expired_card":
		kind = KindCardDeclined
	}
	return NewPaymentError(kind, "").WithDetail("decline_code", declineCode)
}

func NewCreditsExhaustedError(creditsUsed, creditsLimit int) *AppError {
	return NewRateLimitError(KindCreditsExhausted, "").
		WithDetail("credits_used", creditsUsed).
		WithDetail("credits_limit", creditsLimit)
}

func NewQuotaExceededError(resource string) *AppError {
	return NewResourceError(KindQuotaExceeded, "").
		WithDetail("resource", resource)
}

func NewUnexpectedError(technical string) *AppError {
	return NewInternalError(KindUnexpected, technical)
}

func NewConfigurationError(technical string) *AppError {
	return NewInternalError(KindConfiguration, technical)
}

// AsAppError extracts an *AppError from err's chain, if any.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind == kind
	}
	return false
}
