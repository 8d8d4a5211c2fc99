package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"askdocs/internal/contextutil"
	"askdocs/internal/rag"
)

// SearchHandler handles inspection-only retrieval requests: no gating, no
// generation, just the ranked chunks and their citation labels.
type SearchHandler struct {
	engine   rag.Engine
	defaultK int
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(engine rag.Engine, defaultK int) *SearchHandler {
	return &SearchHandler{engine: engine, defaultK: defaultK}
}

// SearchResponse is the JSON body for search results.
type SearchResponse struct {
	Query   string               `json:"query"`
	Results []rag.RetrievedChunk `json:"results"`
}

// ServeHTTP handles GET /api/search?q=...&k=...
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "q is required"})
		return
	}

	k := h.defaultK
	if kStr := r.URL.Query().Get("k"); kStr != "" {
		parsed, err := strconv.Atoi(kStr)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "k must be a positive integer"})
			return
		}
		k = parsed
	}

	results, err := h.engine.Search(ctx, query, k)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, rag.ErrExternal) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{Query: query, Results: results})
}
