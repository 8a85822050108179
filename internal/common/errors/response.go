package errors

import "time"

// Response is the public JSON envelope returned to API clients on failure.
// It is an output-only projection: nothing technical crosses into it.
type Response struct {
	Success   bool          `json:"success"`
	Error     ResponseError `json:"error"`
	Timestamp time.Time     `json:"timestamp"`
}

// ResponseError is the client-visible error body. ID correlates with the
// persisted log record so support staff can look up the full detail.
type ResponseError struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	ActionHint string `json:"action_hint,omitempty"`
}

// NewResponse builds an envelope for a kind with the given error id.
func NewResponse(kind ErrorKind, errorID string) *Response {
	m := MappingFor(kind)
	return &Response{
		Success: false,
		Error: ResponseError{
			ID:         errorID,
			Code:       string(kind),
			Message:    m.UserMessage,
			ActionHint: m.ActionHint,
		},
		Timestamp: time.Now().UTC(),
	}
}

// ResponseFromError builds the envelope for an AppError. Message and hint
// always derive from the kind's mapping, never from caller-supplied strings,
// so ad hoc technical text cannot leak to clients.
func ResponseFromError(appErr *AppError, errorID string) *Response {
	return NewResponse(appErr.Kind, errorID)
}
