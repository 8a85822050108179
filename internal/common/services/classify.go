// Package services is the boundary layer between application code and
// external providers. It converts raw provider failures into the internal
// taxonomy and carries cross-cutting call behavior (retry, fallback,
// classification) as composable wrappers.
package services

import (
	"context"
	stderrors "errors"
	"net"
	"regexp"
	"strconv"
	"strings"

	"postforge/internal/common/errors"
)

// Provider identifies one external dependency family for classification.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderLinkedIn  Provider = "linkedin"
	ProviderStripe    Provider = "stripe"
)

type providerKey struct{}

// WithProvider binds a provider to the context so nested calls classify
// against it without re-specifying. The binding lives and dies with the
// derived context, so it is released on every exit path.
func WithProvider(ctx context.Context, p Provider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

// ProviderFrom returns the provider bound to ctx, if any.
func ProviderFrom(ctx context.Context) (Provider, bool) {
	p, ok := ctx.Value(providerKey{}).(Provider)
	return p, ok
}

// rule pairs a message predicate with the constructor for the error it
// classifies to. Rules are evaluated in declaration order; first match wins.
type rule struct {
	match func(msg string) bool
	build func(p Provider, err error) *errors.AppError
}

func containsAny(substrs ...string) func(string) bool {
	return func(msg string) bool {
		for _, s := range substrs {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}
}

var retryAfterPattern = regexp.MustCompile(`retry[_\- ]?after[:= ]*(\d+)`)

// retryAfterSeconds pulls a retry-after hint out of the provider message,
// zero when absent.
func retryAfterSeconds(msg string) int {
	m := retryAfterPattern.FindStringSubmatch(msg)
	if len(m) != 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// aiRules cover the language-model providers (openai, anthropic), which
// share failure shapes.
var aiRules = []rule{
	{
		match: containsAny("rate limit", "rate_limit", "too many requests", "429"),
		build: func(p Provider, err error) *errors.AppError {
			return errors.NewAIRateLimitError(string(p), retryAfterSeconds(strings.ToLower(err.Error()))).
				WithCause(err)
		},
	},
	{
		match: containsAny("quota", "billing hard limit"),
		build: func(p Provider, err error) *errors.AppError {
			return errors.NewAIRateLimitError(string(p), 0).WithCause(err)
		},
	},
}

var linkedinRules = []rule{
	{
		match: containsAny("token", "unauthorized", "expired", "revoked", "invalid_grant"),
		build: func(p Provider, err error) *errors.AppError {
			return errors.NewLinkedInTokenExpiredError().WithCause(err)
		},
	},
}

var stripeRules = []rule{
	{
		match: containsAny("declin", "insufficient funds", "insufficient_funds", "do not honor", "expired card", "incorrect card"),
		build: func(p Provider, err error) *errors.AppError {
			return errors.NewPaymentFailedError(inferDeclineCode(strings.ToLower(err.Error()))).
				WithCause(err)
		},
	},
}

var providerRules = map[Provider][]rule{
	ProviderOpenAI:    aiRules,
	ProviderAnthropic: aiRules,
	ProviderLinkedIn:  linkedinRules,
	ProviderStripe:    stripeRules,
}

// fallbackError is the generic failure for a provider family when no rule
// matched.
func fallbackError(p Provider, err error) *errors.AppError {
	switch p {
	case ProviderOpenAI, ProviderAnthropic:
		return errors.NewAIServiceError(string(p), err.Error()).WithCause(err)
	case ProviderLinkedIn:
		return errors.NewLinkedInAPIError(err.Error()).WithCause(err)
	case ProviderStripe:
		return errors.NewStripeError(err.Error()).WithCause(err)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		kind := errors.KindNetworkUnreachable
		if netErr.Timeout() {
			kind = errors.KindNetworkTimeout
		}
		return errors.NewNetworkError(kind, err.Error()).WithCause(err)
	}
	return errors.NewUnexpectedError(err.Error()).WithCause(err)
}

// inferDeclineCode maps the processor message onto the decline codes the
// payment constructor understands.
func inferDeclineCode(msg string) string {
	switch {
	case strings.Contains(msg, "insufficient"):
		return "insufficient_funds"
	case strings.Contains(msg, "expired"):
		return "expired_card"
	case strings.Contains(msg, "do not honor"):
		return "do_not_honor"
	case strings.Contains(msg, "declin"):
		return "card_declined"
	default:
		return "generic_decline"
	}
}

// Classify converts a raw provider failure into the taxonomy. Already-typed
// application errors pass through untouched so double wrapping cannot occur.
// The provider's rules are consulted in order; first match decides, with the
// provider family's generic error as the fallthrough.
func Classify(err error, provider Provider) *errors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}

	msg := strings.ToLower(err.Error())
	for _, r := range providerRules[provider] {
		if r.match(msg) {
			return r.build(provider, err)
		}
	}
	return fallbackError(provider, err)
}
