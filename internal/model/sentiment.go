package model

import "strings"

// Stance is a paper's position relative to the claim
type Stance string

const (
	StancePositive Stance = "POSITIVE" // supports the claim
	StanceNegative Stance = "NEGATIVE" // contradicts the claim
	StanceNeutral  Stance = "NEUTRAL"  // inconclusive
)

// ParseStance normalizes a model-provided label. ok is false for unknown labels.
func ParseStance(label string) (Stance, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "POSITIVE", "SUPPORTS", "SUPPORT":
		return StancePositive, true
	case "NEGATIVE", "CONTRADICTS", "CONTRADICT":
		return StanceNegative, true
	case "NEUTRAL", "INCONCLUSIVE", "MIXED":
		return StanceNeutral, true
	}
	return "", false
}

// PaperSentiment is the stance label for one paper
type PaperSentiment struct {
	Sentiment  Stance  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// FallbackSentiment is used when a paper cannot be classified.
// It must not bias the score toward support or contradiction.
func FallbackSentiment() PaperSentiment {
	return PaperSentiment{
		Sentiment:  StanceNeutral,
		Confidence: 0.5,
		Reason:     "Analysis failed",
	}
}
