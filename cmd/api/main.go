package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"askdocs/internal/config"
	"askdocs/internal/evidence"
	internalhttp "askdocs/internal/http"
	"askdocs/internal/ingest"
	"askdocs/internal/llm"
	"askdocs/internal/rag"
	"askdocs/internal/storage"
	"askdocs/internal/vectorstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	ledger := storage.NewSQLiteLedger(db)

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	ctx := context.Background()
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	if cfg.CorpusDir == "" {
		log.Fatalf("CORPUS_DIR is required")
	}
	pipeline := ingest.NewPipeline(cfg.CorpusDir, ledger, embedder, vectorStore, cfg.QdrantCollection, cfg.ChunkSize, cfg.ChunkOverlap)
	if stats, err := pipeline.IndexAll(ctx); err != nil {
		slog.Error("Ingestion completed with errors", "error", err, "stats", stats)
	} else {
		slog.Info("Ingestion completed", "indexed", stats.Indexed, "skipped", stats.Skipped, "removed", stats.Removed)
	}

	gate := evidence.NewGate(
		evidence.NewScorer(cfg.TopSourcesForScoring, cfg.ScoringCharCap, cfg.MinTokenLength),
		cfg.MinChunks,
		cfg.MinMatchedTokens,
		cfg.MinOverlapRatio,
	)
	engine := rag.NewEngine(embedder, vectorStore, cfg.QdrantCollection, llmClient, gate, rag.Options{
		QueryTopK:     cfg.QueryTopK,
		SearchTopK:    cfg.SearchTopK,
		CitationLimit: cfg.CitationLimit,
	})

	router := internalhttp.NewRouter(&internalhttp.Deps{
		Engine:         engine,
		Pipeline:       pipeline,
		VectorStore:    vectorStore,
		CollectionName: cfg.QdrantCollection,
		SearchTopK:     cfg.SearchTopK,
	})

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("API server listening", "port", cfg.APIPort)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
