// Package session implements the interactive question loop. It is plain I/O
// glue over the engine: the core stays callable and testable without any
// terminal attached.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"askdocs/internal/contextutil"
	"askdocs/internal/rag"
)

const prompt = "ask> "

// searchPrefix switches a line into inspection-only retrieval.
const searchPrefix = ":search "

// Session runs the read-loop: prompt, question, answer-or-refusal, repeat.
// Questions are processed one at a time; empty input ends the session.
type Session struct {
	engine  rag.Engine
	in      io.Reader
	out     io.Writer
	searchK int
}

// New creates a Session over the given engine and streams.
func New(engine rag.Engine, in io.Reader, out io.Writer, searchK int) *Session {
	return &Session{
		engine:  engine,
		in:      in,
		out:     out,
		searchK: searchK,
	}
}

// Run executes the loop until empty input or input exhaustion. External
// failures on a single question are reported and the loop continues; they
// are never rendered as the evidence refusal.
func (s *Session) Run(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)
	scanner := bufio.NewScanner(s.in)

	fmt.Fprintln(s.out, "Ask a question about your documents. Empty input exits.")
	for {
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}

		if query, ok := strings.CutPrefix(line, searchPrefix); ok {
			s.runSearch(ctx, strings.TrimSpace(query))
			continue
		}

		resp, err := s.engine.Ask(ctx, rag.AskRequest{Question: line})
		if err != nil {
			// A fault, not a refusal: surface it distinctly and move on.
			logger.ErrorContext(ctx, "question failed", "error", err)
			fmt.Fprintf(s.out, "error: %v\n\n", err)
			continue
		}

		fmt.Fprintln(s.out, resp.Answer)
		if !resp.Refused && len(resp.Citations) > 0 {
			fmt.Fprintln(s.out, "Sources:")
			for _, citation := range resp.Citations {
				fmt.Fprintf(s.out, "  %s\n", citation)
			}
		}
		fmt.Fprintln(s.out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	fmt.Fprintln(s.out, "bye")
	return nil
}

// runSearch prints inspection-only retrieval results.
func (s *Session) runSearch(ctx context.Context, query string) {
	if query == "" {
		fmt.Fprintf(s.out, "usage: %s<query>\n\n", searchPrefix)
		return
	}

	results, err := s.engine.Search(ctx, query, s.searchK)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n\n", err)
		return
	}
	if len(results) == 0 {
		fmt.Fprintf(s.out, "no matches\n\n")
		return
	}

	for _, r := range results {
		preview := r.Content
		if runes := []rune(preview); len(runes) > 200 {
			preview = string(runes[:200]) + "..."
		}
		fmt.Fprintf(s.out, "%d. %s score=%.3f\n   %s\n", r.Rank, r.Citation, r.Score, preview)
	}
	fmt.Fprintln(s.out)
}
