package errors

import "fmt"

// ErrorMapping translates an ErrorKind into its user-facing presentation.
// User messages never contain implementation vocabulary; raw detail stays in
// the technical message and the log store.
type ErrorMapping struct {
	Category    ErrorCategory
	Severity    ErrorSeverity
	HTTPStatus  int
	UserMessage string
	ActionHint  string
	// Transient marks kinds that are likely to succeed on retry.
	Transient bool
}

// mappings is populated once below and never mutated afterwards; concurrent
// reads need no synchronization.
var mappings = map[ErrorKind]ErrorMapping{
	KindAuthTokenExpired: {
		Category:    CategoryAuthentication,
		Severity:    SeverityWarning,
		HTTPStatus:  401,
		UserMessage: "Your session has expired.",
		ActionHint:  "Please sign in again to continue.",
	},
	KindAuthTokenInvalid: {
		Category:    CategoryAuthentication,
		Severity:    SeverityWarning,
		HTTPStatus:  401,
		UserMessage: "We could not verify your session.",
		ActionHint:  "Please sign in again to continue.",
	},
	KindAuthCredentialsInvalid: {
		Category:    CategoryAuthentication,
		Severity:    SeverityWarning,
		HTTPStatus:  401,
		UserMessage: "The email or password you entered is incorrect.",
		ActionHint:  "Check your details and try again.",
	},
	KindPermissionDenied: {
		Category:    CategoryAuthorization,
		Severity:    SeverityWarning,
		HTTPStatus:  403,
		UserMessage: "You do not have access to this resource.",
		ActionHint:  "Contact your workspace admin if you believe this is a mistake.",
	},
	KindSubscriptionRequired: {
		Category:    CategoryAuthorization,
		Severity:    SeverityInfo,
		HTTPStatus:  403,
		UserMessage: "This feature is not included in your current plan.",
		ActionHint:  "Upgrade your plan to unlock it.",
	},
	KindInvalidInput: {
		Category:    CategoryValidation,
		Severity:    SeverityInfo,
		HTTPStatus:  400,
		UserMessage: "Some of the information you provided is not valid.",
		ActionHint:  "Review the highlighted fields and try again.",
	},
	KindFileTooLarge: {
		Category:    CategoryFileOperation,
		Severity:    SeverityInfo,
		HTTPStatus:  413,
		UserMessage: "The file you uploaded is too large.",
		ActionHint:  "Check your file size and upload a smaller file.",
	},
	KindFileTypeInvalid: {
		Category:    CategoryFileOperation,
		Severity:    SeverityInfo,
		HTTPStatus:  415,
		UserMessage: "This file type is not supported.",
		ActionHint:  "Upload one of the supported file types.",
	},
	KindFileUploadFail: {
		Category:    CategoryFileOperation,
		Severity:    SeverityError,
		HTTPStatus:  500,
		UserMessage: "We could not process your file.",
		ActionHint:  "Please try uploading again.",
		Transient:   true,
	},
	KindDBConnectionFailed: {
		Category:    CategoryDatabase,
		Severity:    SeverityError,
		HTTPStatus:  503,
		UserMessage: "We are having trouble reaching our servers.",
		ActionHint:  "Please try again in a few moments.",
		Transient:   true,
	},
	KindDBQueryFailed: {
		Category:    CategoryDatabase,
		Severity:    SeverityError,
		HTTPStatus:  500,
		UserMessage: "Something went wrong while saving your data.",
		ActionHint:  "Please try again.",
		Transient:   true,
	},
	KindDBRecordNotFound: {
		Category:    CategoryDatabase,
		Severity:    SeverityInfo,
		HTTPStatus:  404,
		UserMessage: "We could not find what you were looking for.",
		ActionHint:  "It may have been moved or deleted.",
	},
	KindDBDuplicateEntry: {
		Category:    CategoryDatabase,
		Severity:    SeverityInfo,
		HTTPStatus:  409,
		UserMessage: "This item already exists.",
		ActionHint:  "Use a different value or edit the existing item.",
	},
	KindDBSchemaMismatch: {
		Category:    CategoryDatabase,
		Severity:    SeverityCritical,
		HTTPStatus:  500,
		UserMessage: "Something went wrong on our side.",
	},
	KindNetworkUnreachable: {
		Category:    CategoryNetwork,
		Severity:    SeverityError,
		HTTPStatus:  503,
		UserMessage: "We are having trouble connecting to a required service.",
		ActionHint:  "Please try again in a few moments.",
		Transient:   true,
	},
	KindNetworkTimeout: {
		Category:    CategoryNetwork,
		Severity:    SeverityError,
		HTTPStatus:  504,
		UserMessage: "The request took too long to complete.",
		ActionHint:  "Please try again.",
		Transient:   true,
	},
	KindAIServiceFailed: {
		Category:    CategoryExternalService,
		Severity:    SeverityError,
		HTTPStatus:  503,
		UserMessage: "Our content assistant is temporarily unavailable.",
		ActionHint:  "Please try generating again shortly.",
		Transient:   true,
	},
	KindAIRateLimited: {
		Category:    CategoryExternalService,
		Severity:    SeverityWarning,
		HTTPStatus:  429,
		UserMessage: "Our content assistant is busy right now.",
		ActionHint:  "Wait a moment and try again.",
		Transient:   true,
	},
	KindLinkedInFailed: {
		Category:    CategoryExternalService,
		Severity:    SeverityError,
		HTTPStatus:  503,
		UserMessage: "We could not reach LinkedIn.",
		ActionHint:  "Please try again in a few minutes.",
		Transient:   true,
	},
	KindLinkedInTokenExpired: {
		Category:    CategoryExternalService,
		Severity:    SeverityWarning,
		HTTPStatus:  401,
		UserMessage: "Your LinkedIn connection has expired.",
		ActionHint:  "Reconnect your LinkedIn account in settings.",
	},
	KindStripeFailed: {
		Category:    CategoryExternalService,
		Severity:    SeverityError,
		HTTPStatus:  503,
		UserMessage: "Our payment provider is temporarily unavailable.",
		ActionHint:  "Please try again shortly. You have not been charged.",
		Transient:   true,
	},
	KindCardDeclined: {
		Category:    CategoryPayment,
		Severity:    SeverityWarning,
		HTTPStatus:  402,
		UserMessage: "Your card was declined.",
		ActionHint:  "Try a different payment method or contact your bank.",
	},
	KindInsufficientFunds: {
		Category:    CategoryPayment,
		Severity:    SeverityWarning,
		HTTPStatus:  402,
		UserMessage: "Your card has insufficient funds.",
		ActionHint:  "Try a different payment method.",
	},
	KindPaymentFailed: {
		Category:    CategoryPayment,
		Severity:    SeverityError,
		HTTPStatus:  402,
		UserMessage: "We could not process your payment.",
		ActionHint:  "Check your payment details and try again.",
	},
	KindCreditsExhausted: {
		Category:    CategoryRateLimit,
		Severity:    SeverityInfo,
		HTTPStatus:  429,
		UserMessage: "You have used all of your generation credits.",
		ActionHint:  "Upgrade your plan or wait for your credits to renew.",
	},
	KindAPIThrottled: {
		Category:    CategoryRateLimit,
		Severity:    SeverityWarning,
		HTTPStatus:  429,
		UserMessage: "You are sending requests too quickly.",
		ActionHint:  "Slow down and try again in a moment.",
		Transient:   true,
	},
	KindQuotaExceeded: {
		Category:    CategoryResource,
		Severity:    SeverityWarning,
		HTTPStatus:  429,
		UserMessage: "You have reached the limit for your account.",
		ActionHint:  "Remove unused items or upgrade your plan.",
	},
	KindUnexpected: {
		Category:    CategoryInternal,
		Severity:    SeverityCritical,
		HTTPStatus:  500,
		UserMessage: "Something went wrong on our side. We are looking into it.",
	},
	KindConfiguration: {
		Category:    CategoryInternal,
		Severity:    SeverityCritical,
		HTTPStatus:  500,
		UserMessage: "Something went wrong on our side. We are looking into it.",
	},
}

func init() {
	// Declared-kind completeness is a build-time invariant, not a runtime
	// error: an unmapped kind aborts process start.
	for _, kind := range allKinds {
		m, ok := mappings[kind]
		if !ok {
			panic(fmt.Sprintf("errors: kind %s has no mapping", kind))
		}
		if m.HTTPStatus < 100 || m.HTTPStatus >= 599 {
			panic(fmt.Sprintf("errors: kind %s has invalid status %d", kind, m.HTTPStatus))
		}
		if m.UserMessage == "" {
			panic(fmt.Sprintf("errors: kind %s has empty user message", kind))
		}
		if m.Severity < SeverityCritical && m.ActionHint == "" {
			panic(fmt.Sprintf("errors: non-critical kind %s has no action hint", kind))
		}
	}
	declared := make(map[ErrorKind]struct{}, len(allKinds))
	for _, kind := range allKinds {
		declared[kind] = struct{}{}
	}
	for kind := range mappings {
		if _, ok := declared[kind]; !ok {
			panic(fmt.Sprintf("errors: mapped kind %s is not declared", kind))
		}
	}
}

// MappingFor returns the presentation mapping for a kind. Unknown kinds fall
// back to the KindUnexpected mapping so callers always get a usable value.
func MappingFor(kind ErrorKind) ErrorMapping {
	if m, ok := mappings[kind]; ok {
		return m
	}
	return mappings[KindUnexpected]
}

// UserMessage returns the sanitized, non-technical message for a kind.
func UserMessage(kind ErrorKind) string {
	return MappingFor(kind).UserMessage
}

// CategoryOf returns the category a declared kind belongs to, or "" if the
// kind is unknown.
func CategoryOf(kind ErrorKind) ErrorCategory {
	if m, ok := mappings[kind]; ok {
		return m.Category
	}
	return ""
}
