package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"postforge/internal/common/errors"
	"postforge/internal/common/logger"
	"postforge/internal/common/metrics"
)

// Call is a value-producing operation against an external provider.
type Call[T any] func(ctx context.Context) (T, error)

// CallObserver receives a span plus instrument callbacks around every
// provider call made through WithServiceErrors.
type CallObserver interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordProviderCall(ctx context.Context, provider, status string)
	RecordCallDuration(ctx context.Context, provider string, duration time.Duration)
}

var observer CallObserver

// SetObserver installs the process-wide call observer. Pass nil to disable.
func SetObserver(o CallObserver) {
	observer = o
}

// WithServiceErrors wraps op so every failure leaves classified into the
// taxonomy, never raw. When the provider argument is empty, the one bound to
// the call's context via WithProvider is used. A nil log disables logging.
func WithServiceErrors[T any](provider Provider, log logger.Logger, op Call[T]) Call[T] {
	return func(ctx context.Context) (T, error) {
		p := provider
		if p == "" {
			if bound, ok := ProviderFrom(ctx); ok {
				p = bound
			}
		}

		obs := observer
		if obs != nil {
			var span trace.Span
			ctx, span = obs.StartSpan(ctx, "provider."+string(p)+".call")
			defer span.End()
		}

		start := time.Now()
		result, err := op(ctx)
		elapsed := time.Since(start)
		metrics.ExternalCallDuration.WithLabelValues(string(p)).Observe(elapsed.Seconds())
		if obs != nil {
			obs.RecordCallDuration(ctx, string(p), elapsed)
		}

		if err == nil {
			metrics.ExternalCalls.WithLabelValues(string(p), "success").Inc()
			if obs != nil {
				obs.RecordProviderCall(ctx, string(p), "success")
			}
			return result, nil
		}
		metrics.ExternalCalls.WithLabelValues(string(p), "error").Inc()
		if obs != nil {
			obs.RecordProviderCall(ctx, string(p), "error")
		}

		appErr := Classify(err, p)
		if log != nil {
			fields := map[string]interface{}{
				"provider":  string(p),
				"errorKind": string(appErr.Kind),
				"error":     errors.SanitizeString(err.Error()),
			}
			if appErr.Severity() >= errors.SeverityError {
				log.Error("external call failed", fields)
			} else {
				log.Warn("external call failed", fields)
			}
		}

		var zero T
		return zero, appErr
	}
}

// WithFallback wraps op so any failure is swallowed and fallback returned
// instead. For enrichment calls that must never abort the primary operation.
func WithFallback[T any](provider Provider, fallback T, log logger.Logger, op Call[T]) Call[T] {
	return func(ctx context.Context) (T, error) {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		metrics.FallbacksUsed.WithLabelValues(string(provider)).Inc()
		if log != nil {
			log.Warn("using fallback after failed call", map[string]interface{}{
				"provider": string(provider),
				"error":    errors.SanitizeString(err.Error()),
			})
		}
		return fallback, nil
	}
}

// WithRetry wraps op with the retry handler's backoff policy.
func WithRetry[T any](r *errors.RetryHandler, op Call[T]) Call[T] {
	return func(ctx context.Context) (T, error) {
		return errors.RetryValue(ctx, r, op)
	}
}
