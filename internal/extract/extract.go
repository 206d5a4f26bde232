// Package extract runs the per-paper model calls: study metadata, stance
// and summary. Every extractor degrades to a fixed fallback value.
package extract

import (
	"context"
	"time"

	"github.com/ppiankov/claimcheck/internal/llm"
)

// maxAbstractChars bounds how much abstract text goes into a prompt
const maxAbstractChars = 3000

type caller struct {
	sessions *llm.Sessions
	kind     llm.Kind
	timeout  time.Duration
}

func (c caller) complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.sessions.Complete(ctx, c.kind, req)
}

func clip(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max])
}
