package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"askdocs/internal/contextutil"
	"askdocs/internal/rag"
)

// AskHandler handles HTTP requests for question answering.
type AskHandler struct {
	engine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles POST /api/ask. A refusal is a normal 200 outcome; an
// external collaborator fault maps to 502 and is never disguised as a
// refusal.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req rag.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "question is required"})
		return
	}

	resp, err := h.engine.Ask(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "ask failed", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, rag.ErrExternal) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeJSON encodes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
