// Package rephrase turns a free-text health claim into a database query.
package rephrase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/ppiankov/claimcheck/internal/llm"
	"github.com/ppiankov/claimcheck/internal/model"
)

// ErrEmptyClaim is returned for a blank claim
var ErrEmptyClaim = errors.New("claim is empty")

const systemPrompt = `You convert health claims into short search queries for biomedical literature databases such as PubMed.
Reply with 3 to 6 medical keywords separated by spaces. No punctuation, no quotes, no explanation.

Claim: Drinking coffee causes heart disease
Query: coffee consumption cardiovascular disease risk

Claim: Does turmeric really help with inflammation?
Query: curcumin turmeric inflammation

Claim: Eating carrots improves your eyesight
Query: carrot beta carotene vision`

// maxFallbackTerms caps the heuristic query length
const maxFallbackTerms = 5

var stopWords = map[string]struct{}{
	"about": {}, "after": {}, "also": {}, "been": {}, "before": {}, "being": {},
	"better": {}, "cause": {}, "causes": {}, "could": {}, "does": {}, "doing": {},
	"every": {}, "from": {}, "have": {}, "help": {}, "helps": {}, "into": {},
	"just": {}, "make": {}, "makes": {}, "more": {}, "most": {}, "much": {},
	"really": {}, "should": {}, "some": {}, "than": {}, "that": {}, "their": {},
	"them": {}, "there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"true": {}, "very": {}, "what": {}, "when": {}, "which": {}, "will": {},
	"with": {}, "would": {}, "your": {}, "yours": {},
}

// Rephraser asks the rewriter session for keywords and falls back to a
// stop-word heuristic when the model cannot answer
type Rephraser struct {
	sessions *llm.Sessions
	timeout  time.Duration
}

// New creates a Rephraser. timeout bounds the single model call.
func New(sessions *llm.Sessions, timeout time.Duration) *Rephraser {
	return &Rephraser{sessions: sessions, timeout: timeout}
}

// Rephrase returns the search query for claim. The only error is
// ErrEmptyClaim; model trouble degrades to FallbackQuery.
func (r *Rephraser) Rephrase(ctx context.Context, claim model.Claim) (model.Result[model.SearchQuery], error) {
	if claim.IsEmpty() {
		return model.Result[model.SearchQuery]{}, ErrEmptyClaim
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	text, err := r.sessions.Complete(ctx, llm.KindRewriter, llm.CompletionRequest{
		System:    systemPrompt,
		Prompt:    "Claim: " + claim.Text + "\nQuery:",
		MaxTokens: 40,
	})
	fallback := model.SearchQuery(FallbackQuery(claim.Text))
	if err != nil {
		return model.Fallback(fallback, model.FailureModelUnavailable, err), nil
	}

	query := strings.TrimSpace(strings.TrimPrefix(llm.CleanLine(text), "Query:"))
	if query == "" {
		return model.Fallback(fallback, model.FailureMalformed, errors.New("empty query from model")), nil
	}
	return model.OK(model.SearchQuery(query)), nil
}

// FallbackQuery derives a query without a model: lowercase, strip
// punctuation, drop short words and stop words, keep the first five.
func FallbackQuery(claim string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, claim)

	var terms []string
	for _, word := range strings.Fields(cleaned) {
		if len([]rune(word)) <= 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		terms = append(terms, word)
		if len(terms) == maxFallbackTerms {
			break
		}
	}

	if len(terms) == 0 {
		return strings.TrimSpace(claim)
	}
	return strings.Join(terms, " ")
}
