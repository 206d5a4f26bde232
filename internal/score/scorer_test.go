package score

import (
	"testing"

	"github.com/ppiankov/claimcheck/internal/model"
)

func paper(stance model.Stance, confidence, quality float64) model.Paper {
	return model.Paper{
		Title:        string(stance),
		Sentiment:    &model.PaperSentiment{Sentiment: stance, Confidence: confidence},
		QualityScore: model.FloatPtr(quality),
	}
}

func TestCalculate_NoSentimentIsNeutral(t *testing.T) {
	scorer := NewTruthScorer()

	tests := []struct {
		count      int
		confidence int
	}{
		{0, 50},
		{1, 60},
		{2, 60},
		{3, 80},
		{4, 80},
		{5, 90},
		{12, 90},
	}

	for _, tt := range tests {
		papers := make([]model.Paper, tt.count)
		got := scorer.Calculate(papers, tt.count)
		if got.TruthScore != 50 {
			t.Errorf("count %d: expected neutral score 50, got %d", tt.count, got.TruthScore)
		}
		if got.Confidence != tt.confidence {
			t.Errorf("count %d: expected confidence %d, got %d", tt.count, tt.confidence, got.Confidence)
		}
		if got.PaperCount != tt.count {
			t.Errorf("count %d: paper count not carried, got %d", tt.count, got.PaperCount)
		}
	}
}

func TestCalculate_FullContradictionClampsToZero(t *testing.T) {
	scorer := NewTruthScorer()
	papers := []model.Paper{
		paper(model.StanceNegative, 1.0, 0.7),
		paper(model.StanceNegative, 1.0, 0.3),
	}

	got := scorer.Calculate(papers, len(papers))
	if got.Breakdown.Negative != 100 || got.Breakdown.Positive != 0 {
		t.Fatalf("unexpected breakdown: %+v", got.Breakdown)
	}
	// raw -100 is floored: the magnitude of contradiction is discarded
	if got.TruthScore != 0 {
		t.Errorf("expected 0, got %d", got.TruthScore)
	}
}

func TestNet(t *testing.T) {
	tests := []struct {
		b    model.Breakdown
		want int
	}{
		{model.Breakdown{Positive: 70, Negative: 20, Neutral: 10}, 50},
		{model.Breakdown{Positive: 0, Negative: 100}, 0},
		{model.Breakdown{Positive: 100}, 100},
		{model.Breakdown{Positive: 72, Negative: 24}, 48},
	}
	for _, tt := range tests {
		if got := Net(tt.b); got != tt.want {
			t.Errorf("Net(%+v) = %d, want %d", tt.b, got, tt.want)
		}
	}
}

func TestCalculate_WeightedShares(t *testing.T) {
	scorer := NewTruthScorer()
	// equal quality, full confidence: weights 0.7 / 0.2 / 0.1
	var papers []model.Paper
	for i := 0; i < 7; i++ {
		papers = append(papers, paper(model.StancePositive, 1.0, 0.4))
	}
	for i := 0; i < 2; i++ {
		papers = append(papers, paper(model.StanceNegative, 1.0, 0.4))
	}
	papers = append(papers, paper(model.StanceNeutral, 1.0, 0.4))

	got := scorer.Calculate(papers, len(papers))
	want := model.Breakdown{Positive: 70, Negative: 20, Neutral: 10}
	if got.Breakdown != want {
		t.Errorf("expected %+v, got %+v", want, got.Breakdown)
	}
	if got.TruthScore != 50 {
		t.Errorf("expected truth score 50, got %d", got.TruthScore)
	}
	if got.Confidence != 90 {
		t.Errorf("expected confidence 90, got %d", got.Confidence)
	}
}

func TestCalculate_MixedScenario(t *testing.T) {
	scorer := NewTruthScorer()
	// 3 supporting papers (confidence 0.8, quality 0.3) and 2 contradicting
	// (confidence 0.6, quality 0.2). Weights are normalized by the total
	// quality of 1.3.
	papers := []model.Paper{
		paper(model.StancePositive, 0.8, 0.3),
		paper(model.StancePositive, 0.8, 0.3),
		paper(model.StancePositive, 0.8, 0.3),
		paper(model.StanceNegative, 0.6, 0.2),
		paper(model.StanceNegative, 0.6, 0.2),
	}

	got := scorer.Calculate(papers, 5)
	// 0.72/1.3 = 0.5538, 0.24/1.3 = 0.1846
	if got.Breakdown.Positive != 55 || got.Breakdown.Negative != 18 || got.Breakdown.Neutral != 0 {
		t.Errorf("unexpected breakdown: %+v", got.Breakdown)
	}
	if got.TruthScore != 37 {
		t.Errorf("expected 37, got %d", got.TruthScore)
	}
	if got.Confidence != 90 {
		t.Errorf("expected confidence 90, got %d", got.Confidence)
	}
}

func TestCalculate_MissingQualityDefaults(t *testing.T) {
	scorer := NewTruthScorer()
	papers := []model.Paper{
		{Sentiment: &model.PaperSentiment{Sentiment: model.StancePositive, Confidence: 1}},
		{Sentiment: &model.PaperSentiment{Sentiment: model.StanceNeutral, Confidence: 1}},
		{Title: "unrated"},
	}

	got := scorer.Calculate(papers, 3)
	if got.Breakdown.Positive != 50 || got.Breakdown.Neutral != 50 {
		t.Errorf("expected 50/50 split with default quality, got %+v", got.Breakdown)
	}
	if got.TruthScore != 50 || got.Confidence != 80 {
		t.Errorf("unexpected score: %+v", got)
	}
}

func TestCalculate_FallbackSentimentDoesNotBias(t *testing.T) {
	scorer := NewTruthScorer()
	fallback := model.FallbackSentiment()
	papers := []model.Paper{
		{Sentiment: &fallback, QualityScore: model.FloatPtr(0.5)},
		{Sentiment: &fallback, QualityScore: model.FloatPtr(0.5)},
	}

	got := scorer.Calculate(papers, 2)
	if got.Breakdown.Positive != 0 || got.Breakdown.Negative != 0 || got.TruthScore != 0 {
		t.Errorf("fallback sentiments must only add to neutral, got %+v", got)
	}
	if got.Breakdown.Neutral != 50 {
		t.Errorf("expected neutral 50 (confidence 0.5), got %d", got.Breakdown.Neutral)
	}
}

func TestCalculate_ZeroQualityWeight(t *testing.T) {
	scorer := NewTruthScorer()
	papers := []model.Paper{paper(model.StancePositive, 1, 0)}

	got := scorer.Calculate(papers, 1)
	if got.TruthScore != 50 || got.Confidence != 60 {
		t.Errorf("expected neutral score for zero total weight, got %+v", got)
	}
}
