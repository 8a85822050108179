package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// HTTP Middleware Tests
// ==========================

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) *Response {
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

func TestWrap_ErrorBecomesEnvelope(t *testing.T) {
	sink := &memorySink{}
	h := createTestHandler(sink)

	handler := Wrap(h, func(w http.ResponseWriter, r *http.Request) error {
		return NewCreditsExhaustedError(100, 100)
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("POST", "/api/v1/posts/generate", nil))

	assert.Equal(t, 429, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, string(KindCreditsExhausted), resp.Error.Code)
	assert.NotEmpty(t, resp.Error.ID)

	rec := sink.last(t)
	assert.Equal(t, "/api/v1/posts/generate", rec.Endpoint)
}

func TestWrap_SuccessWritesNothingExtra(t *testing.T) {
	h := createTestHandler(&memorySink{})

	handler := Wrap(h, func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRecoverer_PanicBecomesUnexpectedEnvelope(t *testing.T) {
	sink := &memorySink{}
	h := createTestHandler(sink)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})

	w := httptest.NewRecorder()
	Recoverer(h)(inner).ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/credits", nil))

	assert.Equal(t, 500, w.Code)

	resp := decodeEnvelope(t, w)
	assert.Equal(t, string(KindUnexpected), resp.Error.Code)
	assert.NotContains(t, w.Body.String(), "handler exploded")

	rec := sink.last(t)
	assert.Contains(t, rec.Message, "handler exploded")
}

func TestRecoverer_PassesNormalRequestsThrough(t *testing.T) {
	h := createTestHandler(&memorySink{})

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	w := httptest.NewRecorder()
	Recoverer(h)(inner).ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
