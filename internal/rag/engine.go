package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_collaborators.go -package=mocks askdocs/internal/rag Embedder,Generator

import (
	"context"
	"log/slog"

	"askdocs/internal/contextutil"
	"askdocs/internal/document"
	"askdocs/internal/evidence"
	"askdocs/internal/llm"
	"askdocs/internal/vectorstore"
)

// Embedder turns texts into vectors. Implemented by llm.EmbeddingsClient.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces an answer from a message sequence. Implemented by
// llm.Client.
type Generator interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Engine answers questions over the indexed corpus, refusing when retrieved
// evidence is too weak.
type Engine interface {
	// Ask retrieves evidence for a question and either generates a grounded
	// answer with citations or returns the fixed refusal.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)

	// Search performs inspection-only retrieval with no gating and no
	// generation.
	Search(ctx context.Context, query string, k int) ([]RetrievedChunk, error)
}

// Options bound retrieval and display for an engine.
type Options struct {
	// QueryTopK is the retrieval depth for Ask.
	QueryTopK int
	// SearchTopK is the default retrieval depth for Search.
	SearchTopK int
	// CitationLimit caps the citation list on an answer.
	CitationLimit int
}

// DefaultOptions returns the standard retrieval bounds.
func DefaultOptions() Options {
	return Options{
		QueryTopK:     8,
		SearchTopK:    5,
		CitationLimit: DefaultCitationLimit,
	}
}

type ragEngine struct {
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	generator   Generator
	gate        evidence.Gate
	opts        Options
	logger      *slog.Logger
}

// NewEngine creates a new RAG engine over the given collaborators.
func NewEngine(
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	generator Generator,
	gate evidence.Gate,
	opts Options,
) Engine {
	def := DefaultOptions()
	if opts.QueryTopK <= 0 {
		opts.QueryTopK = def.QueryTopK
	}
	if opts.SearchTopK <= 0 {
		opts.SearchTopK = def.SearchTopK
	}
	if opts.CitationLimit <= 0 {
		opts.CitationLimit = def.CitationLimit
	}
	return &ragEngine{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		generator:   generator,
		gate:        gate,
		opts:        opts,
		logger:      slog.Default(),
	}
}

const systemPrompt = "You are a careful assistant that answers questions using only the " +
	"provided source excerpts. If the sources do not contain the answer, say so plainly. " +
	"Do not use outside knowledge. Refer to sources by their bracketed labels when helpful."

// Ask processes one question end to end: retrieve, gate, and on sufficient
// evidence generate. The question moves through RECEIVED, RETRIEVED, then
// REFUSED or GROUNDED/GENERATING/ANSWERED; any external failure ends in
// ERROR. No generation call happens on refusal.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	state := StateReceived
	logger.InfoContext(ctx, "query received", "state", state, "question_length", len(req.Question))

	k := req.K
	if k <= 0 {
		k = e.opts.QueryTopK
	}

	chunks, err := e.retrieve(ctx, req.Question, k)
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "state", StateError, "error", err)
		return AskResponse{State: StateError}, err
	}
	state = StateRetrieved
	logger.InfoContext(ctx, "retrieval completed", "state", state, "chunks", len(chunks), "k", k)

	score, sufficient := e.gate.Check(req.Question, chunks)
	if !sufficient {
		state = StateRefused
		logger.InfoContext(ctx, "evidence insufficient, refusing",
			"state", state,
			"chunks", len(chunks),
			"matched_tokens", score.MatchedTokens,
			"total_tokens", score.TotalTokens,
			"overlap_ratio", score.OverlapRatio,
		)
		return AskResponse{
			Answer:    RefusalMessage,
			Citations: []string{},
			Refused:   true,
			Score:     score,
			State:     state,
		}, nil
	}

	state = StateGrounded
	logger.InfoContext(ctx, "evidence sufficient",
		"state", state,
		"matched_tokens", score.MatchedTokens,
		"total_tokens", score.TotalTokens,
		"overlap_ratio", score.OverlapRatio,
	)

	contextBlock := BuildContext(chunks)
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: req.Question + "\n\n" + contextBlock},
	}

	state = StateGenerating
	logger.DebugContext(ctx, "calling generation service", "state", state, "context_length", len(contextBlock))

	answer, err := e.generator.ChatWithMessages(ctx, messages, llm.ChatParams{Temperature: 0.7})
	if err != nil {
		logger.ErrorContext(ctx, "generation failed", "state", StateError, "error", err)
		return AskResponse{State: StateError}, externalErr("generation", err)
	}

	state = StateAnswered
	citations := ExtractCitations(chunks, e.opts.CitationLimit)
	logger.InfoContext(ctx, "query answered", "state", state, "answer_length", len(answer), "citations", len(citations))

	return AskResponse{
		Answer:    answer,
		Citations: citations,
		Score:     score,
		State:     state,
	}, nil
}

// Search performs inspection-only retrieval: no gating, no generation.
func (e *ragEngine) Search(ctx context.Context, query string, k int) ([]RetrievedChunk, error) {
	if k <= 0 {
		k = e.opts.SearchTopK
	}

	chunks, err := e.retrieve(ctx, query, k)
	if err != nil {
		return nil, err
	}

	results := make([]RetrievedChunk, 0, len(chunks))
	for i, chunk := range chunks {
		score, _ := document.NumberValue(chunk.Metadata, metaScoreKey)
		results = append(results, RetrievedChunk{
			Content:  chunk.Content,
			Citation: CitationLabel(chunk.Metadata),
			Score:    float32(score),
			Rank:     i + 1,
		})
	}
	return results, nil
}

// metaScoreKey carries the similarity score through chunk metadata for
// inspection results. It is never persisted.
const metaScoreKey = "_score"

// retrieve embeds the question and searches the vector store, converting
// hits into chunks in ranked order.
func (e *ragEngine) retrieve(ctx context.Context, query string, k int) ([]document.Chunk, error) {
	embeddings, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, externalErr("embed question", err)
	}
	if len(embeddings) == 0 {
		return nil, externalErr("embed question", errNoEmbedding)
	}

	results, err := e.vectorStore.Search(ctx, e.collection, embeddings[0], k)
	if err != nil {
		return nil, externalErr("vector search", err)
	}

	chunks := make([]document.Chunk, 0, len(results))
	for _, result := range results {
		meta := make(map[string]any, len(result.Meta)+1)
		for key, value := range result.Meta {
			meta[key] = value
		}
		meta[metaScoreKey] = result.Score

		chunks = append(chunks, document.Chunk{
			Content:  result.Content,
			Metadata: meta,
		})
	}
	return chunks, nil
}
