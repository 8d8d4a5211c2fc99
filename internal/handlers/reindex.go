package handlers

import (
	"net/http"

	"askdocs/internal/contextutil"
	"askdocs/internal/ingest"
)

// ReindexHandler triggers a synchronous re-ingestion of the corpus.
type ReindexHandler struct {
	pipeline *ingest.Pipeline
}

// NewReindexHandler creates a new ReindexHandler.
func NewReindexHandler(pipeline *ingest.Pipeline) *ReindexHandler {
	return &ReindexHandler{pipeline: pipeline}
}

// ServeHTTP handles POST /api/reindex. The run is synchronous; unchanged
// files are skipped via the ledger so repeat calls are cheap.
func (h *ReindexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	stats, err := h.pipeline.IndexAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "reindex failed", "error", err, "stats", stats)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
