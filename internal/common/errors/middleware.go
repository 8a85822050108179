package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// HandlerFunc is an http.HandlerFunc that may fail; returned errors are
// routed through the global handler and rendered as the public envelope.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Wrap adapts a fallible handler for a stock router.
func Wrap(h *Handler, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			WriteError(h, w, r, err)
		}
	}
}

// Recoverer is middleware converting panics into the unexpected-failure
// envelope. Mount it outermost so nothing escapes as a bare 500.
func Recoverer(h *Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := NewUnexpectedError(fmt.Sprintf("panic: %v", rec))
					WriteError(h, w, r, err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError runs err through the global handler and writes the envelope.
// Encoding failures degrade to a constant body; the client always gets a
// reply.
func WriteError(h *Handler, w http.ResponseWriter, r *http.Request, err error) {
	resp, status := h.Handle(r.Context(), err, ExtractRequestContext(r))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		_, _ = w.Write([]byte(`{"success":false}`))
	}
}
