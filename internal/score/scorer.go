package score

import (
	"math"

	"github.com/ppiankov/claimcheck/internal/model"
)

// defaultQuality stands in for papers the ranker never scored
const defaultQuality = 0.5

// TruthScorer turns per-paper stances into the 0-100 truth score
type TruthScorer struct{}

// NewTruthScorer creates a new scorer
func NewTruthScorer() *TruthScorer {
	return &TruthScorer{}
}

// Calculate combines the sentiments of papers, weighted by quality and
// confidence. paperCount is the number of papers that survived retrieval
// and drives the confidence band.
//
// truthScore = clamp(positive% - negative%, 0, 100). Full contradiction
// scores 0, not -100: the score measures support, floored at zero.
func (s *TruthScorer) Calculate(papers []model.Paper, paperCount int) model.TruthScore {
	result := model.TruthScore{
		TruthScore: 50,
		Confidence: ConfidenceBand(paperCount),
		PaperCount: paperCount,
	}

	var totalQuality float64
	var rated []model.Paper
	for _, p := range papers {
		if p.Sentiment == nil {
			continue
		}
		rated = append(rated, p)
		totalQuality += p.Quality(defaultQuality)
	}

	// no sentiment at all, or nothing to weight by
	if len(rated) == 0 || totalQuality <= 0 {
		return result
	}

	var positive, negative, neutral float64
	for _, p := range rated {
		weighted := p.Quality(defaultQuality) / totalQuality * p.Sentiment.Confidence
		switch p.Sentiment.Sentiment {
		case model.StancePositive:
			positive += weighted
		case model.StanceNegative:
			negative += weighted
		default:
			neutral += weighted
		}
	}

	result.Breakdown = Breakdown(positive, negative, neutral)
	result.TruthScore = Net(result.Breakdown)
	return result
}

// Breakdown converts weighted shares into independently rounded percentages
func Breakdown(positive, negative, neutral float64) model.Breakdown {
	return model.Breakdown{
		Positive: percent(positive),
		Negative: percent(negative),
		Neutral:  percent(neutral),
	}
}

// Net is positive% - negative%, clamped to [0, 100]
func Net(b model.Breakdown) int {
	net := b.Positive - b.Negative
	if net < 0 {
		return 0
	}
	if net > 100 {
		return 100
	}
	return net
}

// ConfidenceBand maps the paper count onto 50/60/80/90
func ConfidenceBand(paperCount int) int {
	switch {
	case paperCount < 1:
		return 50
	case paperCount <= 2:
		return 60
	case paperCount <= 4:
		return 80
	default:
		return 90
	}
}

func percent(share float64) int {
	return int(math.Round(share * 100))
}
