package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/claimcheck/internal/llm"
	"github.com/ppiankov/claimcheck/internal/model"
)

const summarySystem = `Summarize the research abstract in one or two plain sentences for a general audience.
State the main finding. No preamble.`

// Summarizer writes a short summary of a paper on the summarizer session
type Summarizer struct {
	caller
}

// NewSummarizer creates a Summarizer
func NewSummarizer(sessions *llm.Sessions, timeout time.Duration) *Summarizer {
	return &Summarizer{caller{sessions: sessions, kind: llm.KindSummarizer, timeout: timeout}}
}

// Summarize returns a 1-2 sentence summary; the fallback is the truncated abstract
func (s *Summarizer) Summarize(ctx context.Context, paper model.Paper) model.Result[string] {
	fallback := model.TruncateAbstract(paper.Abstract, model.SummaryFallbackChars)

	text, err := s.complete(ctx, llm.CompletionRequest{
		System:    summarySystem,
		Prompt:    fmt.Sprintf("Title: %s\n\nAbstract: %s", paper.Title, clip(paper.Abstract, maxAbstractChars)),
		MaxTokens: 150,
	})
	if err != nil {
		return model.Fallback(fallback, model.FailureModelUnavailable, err)
	}

	summary := strings.Join(strings.Fields(llm.StripCodeFence(text)), " ")
	if summary == "" {
		return model.Fallback(fallback, model.FailureMalformed, errors.New("empty summary"))
	}
	return model.OK(summary)
}
