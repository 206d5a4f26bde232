// Package narrate writes the plain-language verdict and translates it.
package narrate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/claimcheck/internal/llm"
	"github.com/ppiankov/claimcheck/internal/model"
)

// ErrNarrativeUnavailable means the verdict could not be written at all
var ErrNarrativeUnavailable = errors.New("narrative unavailable")

const narrativeSystem = `You are a careful science communicator explaining what research says about a health claim.
Write under 150 words in three short parts:
1. What the research shows
2. Bottom line
3. Caveats
Do not invent studies. Base the answer only on the papers provided.`

// Narrator generates the verdict text on the language-model session
type Narrator struct {
	sessions *llm.Sessions
	timeout  time.Duration
}

// NewNarrator creates a Narrator
func NewNarrator(sessions *llm.Sessions, timeout time.Duration) *Narrator {
	return &Narrator{sessions: sessions, timeout: timeout}
}

// Generate sends one prompt covering every ranked paper. There is no
// retry; any failure wraps ErrNarrativeUnavailable.
func (n *Narrator) Generate(ctx context.Context, claim model.Claim, score model.TruthScore, papers []model.Paper) (string, error) {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	text, err := n.sessions.Complete(ctx, llm.KindLanguageModel, llm.CompletionRequest{
		System:    narrativeSystem,
		Prompt:    BuildPrompt(claim, score, papers),
		MaxTokens: 400,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNarrativeUnavailable, err)
	}

	text = strings.TrimSpace(llm.StripCodeFence(text))
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrNarrativeUnavailable)
	}
	return text, nil
}

// BuildPrompt renders the claim, score, breakdown and numbered paper list
func BuildPrompt(claim model.Claim, score model.TruthScore, papers []model.Paper) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Claim: %s\n\n", claim.Text)
	fmt.Fprintf(&b, "Truth score: %d/100 (confidence %d%%, %d papers)\n",
		score.TruthScore, score.Confidence, score.PaperCount)
	fmt.Fprintf(&b, "Evidence breakdown: %d%% supporting, %d%% contradicting, %d%% neutral\n\n",
		score.Breakdown.Positive, score.Breakdown.Negative, score.Breakdown.Neutral)

	b.WriteString("Papers:\n")
	for i := range papers {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, papers[i].Title, papers[i].BestSummary())
	}

	b.WriteString("\nExplain in under 150 words: what the research shows, the bottom line, and caveats.")
	return b.String()
}
