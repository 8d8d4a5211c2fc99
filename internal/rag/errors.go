package rag

import (
	"errors"
	"fmt"
)

// ErrExternal marks a recoverable fault in an external collaborator (vector
// store, embeddings or generation service). Callers report it and keep the
// session alive; it must never be rendered as the evidence refusal, which is
// a deliberate outcome, not a fault.
var ErrExternal = errors.New("external service error")

// errNoEmbedding reports an embeddings response with no vector in it.
var errNoEmbedding = errors.New("no embedding returned for question")

// externalErr wraps an external collaborator failure with context.
func externalErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrExternal, err)
}
