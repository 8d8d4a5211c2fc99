package rag

import "askdocs/internal/evidence"

// RefusalMessage is the fixed text returned when retrieved evidence is too
// weak to ground an answer. The wording is part of the external contract and
// must not change.
const RefusalMessage = "I could not find sufficient evidence in the provided documents (PDF/TXT) to answer your question."

// QueryState tracks a question through its lifecycle. REFUSED, ANSWERED and
// ERROR are terminal for that question; the session then awaits the next one.
type QueryState string

const (
	StateReceived   QueryState = "RECEIVED"
	StateRetrieved  QueryState = "RETRIEVED"
	StateRefused    QueryState = "REFUSED"
	StateGrounded   QueryState = "GROUNDED"
	StateGenerating QueryState = "GENERATING"
	StateAnswered   QueryState = "ANSWERED"
	StateError      QueryState = "ERROR"
)

// AskRequest represents one question against the corpus.
type AskRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// K optionally overrides the retrieval depth.
	K int `json:"k,omitempty"`
}

// AskResponse represents the outcome of one question.
type AskResponse struct {
	// Answer is the generated answer, or RefusalMessage when refused.
	Answer string `json:"answer"`
	// Citations identify the sources backing the answer. Empty on refusal.
	Citations []string `json:"citations"`
	// Refused reports that the evidence gate blocked generation.
	Refused bool `json:"refused"`
	// Score is the evidence score the gate decided on.
	Score evidence.Score `json:"score"`
	// State is the terminal state the question reached.
	State QueryState `json:"state"`
}

// RetrievedChunk is one inspection-search hit.
type RetrievedChunk struct {
	// Content is the chunk text.
	Content string `json:"content"`
	// Citation is the display label derived from the chunk metadata.
	Citation string `json:"citation"`
	// Score is the vector similarity score.
	Score float32 `json:"score"`
	// Rank is the 1-based position in the result list.
	Rank int `json:"rank"`
}
