package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"askdocs/internal/handlers"
	"askdocs/internal/ingest"
	"askdocs/internal/rag"
	"askdocs/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine         rag.Engine
	Pipeline       *ingest.Pipeline
	VectorStore    vectorstore.VectorStore
	CollectionName string
	SearchTopK     int
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)

	askHandler := handlers.NewAskHandler(deps.Engine)
	searchHandler := handlers.NewSearchHandler(deps.Engine, deps.SearchTopK)
	reindexHandler := handlers.NewReindexHandler(deps.Pipeline)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodGet, "/search", searchHandler)
		r.Method(http.MethodPost, "/reindex", reindexHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
