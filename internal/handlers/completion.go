package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/promptgate/apiserver/internal/llm"
	"go.uber.org/zap"
)

// CompletionHandler forwards prompts to the completion gateway.
type CompletionHandler struct {
	gateway *llm.Gateway
	log     *zap.Logger
}

// NewCompletionHandler constructs a CompletionHandler.
func NewCompletionHandler(gateway *llm.Gateway, log *zap.Logger) *CompletionHandler {
	return &CompletionHandler{gateway: gateway, log: log}
}

// CompletionRouter registers the completion route on the given router.
func CompletionRouter(r chi.Router, gateway *llm.Gateway, log *zap.Logger) {
	handler := NewCompletionHandler(gateway, log)

	r.Post("/ai", handler.Complete)
}

type CompletionRequest struct {
	Prompt string `json:"prompt"`
}

type CompletionResponse struct {
	Response string `json:"response"`
}

// Complete forwards the prompt verbatim and returns the upstream response.
func (h *CompletionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	response, err := h.gateway.Complete(r.Context(), req.Prompt)
	if err != nil {
		h.log.Error("completion call", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "completion failed")
		return
	}

	writeJSON(w, http.StatusOK, CompletionResponse{Response: response})
}
