package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Constructor Tests
// ==========================

func TestLeafConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantKind   ErrorKind
		wantStatus int
	}{
		{"token expired", NewTokenExpiredError(), KindAuthTokenExpired, 401},
		{"token invalid", NewTokenInvalidError("bad signature"), KindAuthTokenInvalid, 401},
		{"credentials invalid", NewCredentialsInvalidError(), KindAuthCredentialsInvalid, 401},
		{"permission denied", NewPermissionDeniedError("post", "delete"), KindPermissionDenied, 403},
		{"subscription required", NewSubscriptionRequiredError("scheduling"), KindSubscriptionRequired, 403},
		{"file too large", NewFileTooLargeError(10, 25.5), KindFileTooLarge, 413},
		{"file type invalid", NewFileTypeInvalidError([]string{"png", "jpg"}, "exe"), KindFileTypeInvalid, 415},
		{"record not found", NewRecordNotFoundError("post", "p-1"), KindDBRecordNotFound, 404},
		{"duplicate entry", NewDuplicateEntryError("email"), KindDBDuplicateEntry, 409},
		{"ai service", NewAIServiceError("openai", "boom"), KindAIServiceFailed, 503},
		{"ai rate limit", NewAIRateLimitError("openai", 30), KindAIRateLimited, 429},
		{"linkedin", NewLinkedInAPIError("boom"), KindLinkedInFailed, 503},
		{"linkedin token", NewLinkedInTokenExpiredError(), KindLinkedInTokenExpired, 401},
		{"stripe", NewStripeError("boom"), KindStripeFailed, 503},
		{"credits exhausted", NewCreditsExhaustedError(100, 100), KindCreditsExhausted, 429},
		{"quota exceeded", NewQuotaExceededError("drafts"), KindQuotaExceeded, 429},
		{"unexpected", NewUnexpectedError("boom"), KindUnexpected, 500},
		{"configuration", NewConfigurationError("missing key"), KindConfiguration, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, tt.err.Kind)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus())
		})
	}
}

func TestNewPaymentFailedError_DeclineCodeMapping(t *testing.T) {
	tests := []struct {
		declineCode string
		wantKind    ErrorKind
	}{
		{"insufficient_funds", KindInsufficientFunds},
		{"card_declined", KindCardDeclined},
		{"generic_decline", KindCardDeclined},
		{"do_not_honor", KindCardDeclined},
		{"expired_card", KindCardDeclined},
		{"fraudulent", KindPaymentFailed},
		{"", KindPaymentFailed},
	}

	for _, tt := range tests {
		t.Run(tt.declineCode, func(t *testing.T) {
			err := NewPaymentFailedError(tt.declineCode)
			assert.Equal(t, tt.wantKind, err.Kind)
			assert.Equal(t, 402, err.HTTPStatus())
			assert.Equal(t, tt.declineCode, err.Details["decline_code"])
		})
	}
}

func TestNewError_WrongCategoryPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewPaymentError(KindAuthTokenExpired, "")
	})
}

func TestConstructorDetails(t *testing.T) {
	err := NewCreditsExhaustedError(100, 100)
	assert.Equal(t, 100, err.Details["credits_used"])
	assert.Equal(t, 100, err.Details["credits_limit"])

	err = NewPermissionDeniedError("post", "delete")
	assert.Equal(t, "post", err.Details["resource"])
	assert.Equal(t, "delete", err.Details["action"])
}

// ==========================
// AppError Behavior Tests
// ==========================

func TestAppError_DerivedProperties(t *testing.T) {
	err := NewAIRateLimitError("openai", 30)

	assert.Equal(t, CategoryExternalService, err.Category())
	assert.Equal(t, SeverityWarning, err.Severity())
	assert.True(t, err.Transient())
	assert.Equal(t, UserMessage(KindAIRateLimited), err.UserMessage())
}

func TestAppError_WithStatusOverride(t *testing.T) {
	err := NewTokenExpiredError().WithStatus(419)
	assert.Equal(t, 419, err.HTTPStatus())
}

func TestAppError_CauseChain(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := NewUnexpectedError("wrapper").WithCause(cause)

	assert.ErrorIs(t, err, cause)
}

func TestAppError_ErrorString(t *testing.T) {
	err := NewTokenInvalidError("bad signature")
	assert.Contains(t, err.Error(), string(KindAuthTokenInvalid))
	assert.Contains(t, err.Error(), "bad signature")
}

func TestToMap_ExcludesTechnicalByDefault(t *testing.T) {
	err := NewTokenInvalidError("jwt segment count wrong").
		WithDetail("api_key", "sk-live-abc")

	out := err.ToMap(false)

	assert.NotContains(t, out, "technical_message")
	assert.Equal(t, string(KindAuthTokenInvalid), out["error_code"])

	details := out["details"].(map[string]interface{})
	assert.Equal(t, RedactionMarker, details["api_key"])
}

func TestToMap_IncludesTechnicalWhenAsked(t *testing.T) {
	err := NewTokenInvalidError("jwt segment count wrong")
	out := err.ToMap(true)
	assert.Equal(t, "jwt segment count wrong", out["technical_message"])
}

// ==========================
// Helper Tests
// ==========================

func TestAsAppError(t *testing.T) {
	appErr := NewTokenExpiredError()
	wrapped := fmt.Errorf("request failed: %w", appErr)

	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Same(t, appErr, got)

	_, ok = AsAppError(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewCreditsExhaustedError(100, 100))

	assert.True(t, IsKind(err, KindCreditsExhausted))
	assert.False(t, IsKind(err, KindQuotaExceeded))
	assert.False(t, IsKind(nil, KindCreditsExhausted))
}
