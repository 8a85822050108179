package errors

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"postforge/internal/common/metrics"
)

// NewErrorID produces the user-visible correlation id, ERR-<date>-<8 chars>.
// The suffix is drawn from a v4 UUID, so per-process collisions are
// vanishingly unlikely; no further collision handling is done.
func NewErrorID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "ERR-" + time.Now().UTC().Format("20060102") + "-" + suffix
}

// RequestContext is the plain record of the inbound request a failure
// occurred under. Extraction never mutates the request.
type RequestContext struct {
	Method    string
	Path      string
	ClientIP  string
	UserAgent string
	UserID    string
	AdminID   string
}

// ExtractRequestContext pulls method, path, client address and caller
// identity from r. Identity headers are set by the auth middleware upstream.
func ExtractRequestContext(r *http.Request) RequestContext {
	if r == nil {
		return RequestContext{}
	}
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		// First hop only; the rest is proxy chain.
		if idx := strings.IndexByte(ip, ','); idx > 0 {
			ip = ip[:idx]
		}
		ip = strings.TrimSpace(ip)
	} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	} else {
		ip = r.RemoteAddr
	}
	return RequestContext{
		Method:    r.Method,
		Path:      r.URL.Path,
		ClientIP:  ip,
		UserAgent: r.UserAgent(),
		UserID:    r.Header.Get("X-User-ID"),
		AdminID:   r.Header.Get("X-Admin-ID"),
	}
}

// LogRecord is the persisted trace of one handled failure. Created once,
// never mutated. All free text and context passed through Sanitize first.
type LogRecord struct {
	ErrorID   string                 `json:"error_id"`
	Kind      string                 `json:"kind"`
	Category  string                 `json:"category"`
	Severity  string                 `json:"severity"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Endpoint  string                 `json:"endpoint"`
	Method    string                 `json:"method"`
	UserID    string                 `json:"user_id,omitempty"`
	AdminID   string                 `json:"admin_id,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// LogSink persists log records. Implementations must tolerate concurrent
// writers; ordering between records is not guaranteed.
type LogSink interface {
	Write(ctx context.Context, rec *LogRecord) error
}

// Alerter receives records for out-of-band notification. Called only for
// CRITICAL severity.
type Alerter interface {
	NotifyCritical(ctx context.Context, rec *LogRecord)
}

// Logger is the minimal logging surface the handler needs.
type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Handler is the terminal sink for every failure that reaches the API
// boundary. Handle never fails: whatever breaks inside logging or
// persistence, the caller still gets an envelope.
type Handler struct {
	logger Logger
	sink   LogSink
	alert  Alerter
}

func NewHandler(logger Logger, sink LogSink) *Handler {
	return &Handler{logger: logger, sink: sink}
}

// WithAlerter enables critical-severity notifications.
func (h *Handler) WithAlerter(a Alerter) *Handler {
	h.alert = a
	return h
}

// Handle converts any error into the public envelope and its HTTP status,
// persisting a sanitized log record along the way. Unknown errors map to
// the unexpected-failure kind; no raw text reaches the envelope.
func (h *Handler) Handle(ctx context.Context, err error, reqCtx RequestContext) (*Response, int) {
	appErr := h.normalize(err)
	errorID := NewErrorID()

	rec := h.buildRecord(appErr, errorID, reqCtx)
	h.persist(ctx, rec)

	metrics.ErrorsHandled.WithLabelValues(
		string(appErr.Category()), appErr.Severity().String(),
	).Inc()

	if appErr.Severity() == SeverityCritical && h.alert != nil {
		func() {
			defer func() { _ = recover() }()
			h.alert.NotifyCritical(ctx, rec)
		}()
	}

	return ResponseFromError(appErr, errorID), appErr.HTTPStatus()
}

// normalize ensures we always work with an AppError.
func (h *Handler) normalize(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	if err == nil {
		return NewUnexpectedError("handler invoked with nil error")
	}
	return NewUnexpectedError(err.Error()).WithCause(err)
}

func (h *Handler) buildRecord(appErr *AppError, errorID string, reqCtx RequestContext) *LogRecord {
	var sanitizedCtx map[string]interface{}
	if len(appErr.Details) > 0 {
		if m, ok := Sanitize(appErr.Details).(map[string]interface{}); ok {
			sanitizedCtx = m
		}
	}
	return &LogRecord{
		ErrorID:   errorID,
		Kind:      string(appErr.Kind),
		Category:  string(appErr.Category()),
		Severity:  appErr.Severity().String(),
		Message:   SanitizeString(appErr.Technical),
		Context:   sanitizedCtx,
		Endpoint:  reqCtx.Path,
		Method:    reqCtx.Method,
		UserID:    reqCtx.UserID,
		AdminID:   reqCtx.AdminID,
		CreatedAt: time.Now().UTC(),
	}
}

// persist writes the record, swallowing every failure: a broken log store
// must not turn one error into two.
func (h *Handler) persist(ctx context.Context, rec *LogRecord) {
	defer func() {
		if r := recover(); r != nil && h.logger != nil {
			h.logger.Error("error log write panicked", map[string]interface{}{
				"errorId": rec.ErrorID,
				"panic":   r,
			})
		}
	}()
	if h.sink == nil {
		return
	}
	if err := h.sink.Write(ctx, rec); err != nil && h.logger != nil {
		h.logger.Warn("error log write failed", map[string]interface{}{
			"errorId": rec.ErrorID,
			"error":   err.Error(),
		})
	}
}
