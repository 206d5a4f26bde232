package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/claimcheck/internal/llm"
	"github.com/ppiankov/claimcheck/internal/model"
)

const sentimentSystem = `You judge whether a research paper supports a health claim.
Respond with strict JSON only:
{"sentiment": "POSITIVE" | "NEGATIVE" | "NEUTRAL", "confidence": number between 0 and 1, "reason": one short sentence}
POSITIVE means the paper supports the claim, NEGATIVE means it contradicts it, NEUTRAL means inconclusive or unrelated.`

// SentimentExtractor labels a paper's stance toward the claim
type SentimentExtractor struct {
	caller
}

// NewSentimentExtractor creates an extractor on the language-model session
func NewSentimentExtractor(sessions *llm.Sessions, timeout time.Duration) *SentimentExtractor {
	return &SentimentExtractor{caller{sessions: sessions, kind: llm.KindLanguageModel, timeout: timeout}}
}

type rawSentiment struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Extract returns the paper's stance. Any failure yields exactly
// model.FallbackSentiment().
func (e *SentimentExtractor) Extract(ctx context.Context, claim model.Claim, paper model.Paper) model.Result[model.PaperSentiment] {
	text, err := e.complete(ctx, llm.CompletionRequest{
		System: sentimentSystem,
		Prompt: fmt.Sprintf("Claim: %s\n\nPaper title: %s\n\nSummary: %s",
			claim.Text, paper.Title, paper.BestSummary()),
		MaxTokens: 200,
	})
	if err != nil {
		return model.Fallback(model.FallbackSentiment(), model.FailureModelUnavailable, err)
	}

	var raw rawSentiment
	if err := llm.ParseJSON(text, &raw); err != nil {
		return model.Fallback(model.FallbackSentiment(), model.FailureMalformed, err)
	}

	stance, ok := model.ParseStance(raw.Sentiment)
	if !ok {
		err := fmt.Errorf("unknown sentiment label %q: %w", raw.Sentiment, model.ErrMalformedResponse)
		return model.Fallback(model.FallbackSentiment(), model.FailureMalformed, err)
	}

	return model.OK(model.PaperSentiment{
		Sentiment:  stance,
		Confidence: clamp01(raw.Confidence),
		Reason:     strings.TrimSpace(raw.Reason),
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
