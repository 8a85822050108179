// Package api exposes the HTTP surface. Handlers return errors instead of
// writing failure responses themselves; the error middleware renders every
// failure through the global handler.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"postforge/internal/common/errors"
	"postforge/internal/common/logger"
	"postforge/internal/common/validation"
	"postforge/internal/services/ai"
	"postforge/internal/services/billing"
	"postforge/internal/services/credits"
	"postforge/internal/services/linkedin"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	logger   logger.Logger
	errs     *errors.Handler
	ai       *ai.Client
	linkedin *linkedin.Client
	billing  *billing.Client
	credits  *credits.Ledger
}

func NewHandler(log logger.Logger, errs *errors.Handler, aiClient *ai.Client, li *linkedin.Client, bill *billing.Client, ledger *credits.Ledger) *Handler {
	return &Handler{
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
		errs:     errs,
		ai:       aiClient,
		linkedin: li,
		billing:  bill,
		credits:  ledger,
	}
}

// NewRouter mounts all routes with panic recovery outermost.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(errors.Recoverer(h.errs))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/posts/generate", errors.Wrap(h.errs, h.generatePost))
		r.Post("/posts/publish", errors.Wrap(h.errs, h.publishPost))
		r.Post("/billing/charge", errors.Wrap(h.errs, h.createCharge))
		r.Get("/credits", errors.Wrap(h.errs, h.getCredits))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

var generateSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"topic": {"type": "string", "minLength": 3, "maxLength": 500},
		"industry": {"type": "string", "maxLength": 100},
		"tone": {"type": "string", "enum": ["professional", "casual", "thought-leader"]}
	},
	"required": ["topic"],
	"additionalProperties": false
}`)

var publishSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"access_token": {"type": "string", "minLength": 1},
		"member_id": {"type": "string", "minLength": 1},
		"text": {"type": "string", "minLength": 1, "maxLength": 3000}
	},
	"required": ["access_token", "member_id", "text"],
	"additionalProperties": false
}`)

var chargeSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"customer_id": {"type": "string", "minLength": 1},
		"amount_cents": {"type": "integer", "minimum": 50},
		"currency": {"type": "string", "minLength": 3, "maxLength": 3}
	},
	"required": ["customer_id", "amount_cents"],
	"additionalProperties": false
}`)

func (h *Handler) generatePost(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}

	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := generateSchema.Validate(body); err != nil {
		return err
	}

	var req struct {
		Topic    string `json:"topic"`
		Industry string `json:"industry"`
		Tone     string `json:"tone"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return errors.NewValidationError(errors.KindInvalidInput, err.Error())
	}

	if err := h.credits.Consume(r.Context(), userID, "generate", 1); err != nil {
		return err
	}

	prompt := buildPrompt(req.Topic, req.Tone, h.ai.TrendingTopics(r.Context(), req.Industry))
	gen, err := h.ai.Generate(r.Context(), prompt)
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, map[string]interface{}{
		"text":     gen.Text,
		"provider": gen.Provider,
	})
}

func (h *Handler) publishPost(w http.ResponseWriter, r *http.Request) error {
	if _, err := callerID(r); err != nil {
		return err
	}

	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := publishSchema.Validate(body); err != nil {
		return err
	}

	var req struct {
		AccessToken string `json:"access_token"`
		MemberID    string `json:"member_id"`
		Text        string `json:"text"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return errors.NewValidationError(errors.KindInvalidInput, err.Error())
	}

	postID, err := h.linkedin.PublishPost(r.Context(), req.AccessToken, req.MemberID, req.Text)
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusCreated, map[string]interface{}{
		"post_id": postID,
	})
}

func (h *Handler) createCharge(w http.ResponseWriter, r *http.Request) error {
	if _, err := callerID(r); err != nil {
		return err
	}

	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := chargeSchema.Validate(body); err != nil {
		return err
	}

	var req struct {
		CustomerID  string `json:"customer_id"`
		AmountCents int    `json:"amount_cents"`
		Currency    string `json:"currency"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return errors.NewValidationError(errors.KindInvalidInput, err.Error())
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}

	charge, err := h.billing.CreateCharge(r.Context(), req.CustomerID, req.AmountCents, req.Currency)
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, map[string]interface{}{
		"charge_id": charge.ID,
		"status":    charge.Status,
	})
}

func (h *Handler) getCredits(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}

	remaining, err := h.credits.Remaining(r.Context(), userID)
	if err != nil {
		return err
	}
	used, err := h.credits.Used(r.Context(), userID)
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, map[string]interface{}{
		"used":      used,
		"remaining": remaining,
	})
}

// callerID reads the identity set by the auth layer upstream.
func callerID(r *http.Request) (string, error) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		return "", errors.NewTokenInvalidError("missing identity header")
	}
	return userID, nil
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.NewValidationError(errors.KindInvalidInput, err.Error())
	}
	if len(body) == 0 {
		return nil, errors.NewValidationError(errors.KindInvalidInput, "empty request body")
	}
	return body, nil
}

func buildPrompt(topic, tone string, trending []string) string {
	prompt := "Write a LinkedIn post about: " + topic
	if tone != "" {
		prompt += "\nTone: " + tone
	}
	if len(trending) > 0 {
		prompt += "\nIf relevant, connect it to one of these current discussions:"
		for _, t := range trending {
			prompt += "\n- " + t
		}
	}
	return prompt
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC(),
	})
}
