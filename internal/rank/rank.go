// Package rank orders papers by citation influence and recency.
package rank

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/claimcheck/internal/model"
)

const (
	influenceWeight = 0.6
	recencyWeight   = 0.4

	// papers this many years old or older get no recency credit
	recencyHorizon = 20.0

	// log10(ic+1)/3.5 reaches 1.0 at ~3162 influential citations and is not capped
	influenceScale = 3.5
)

// Ranker scores and sorts papers. Now is injectable for tests.
type Ranker struct {
	Now func() time.Time
}

// NewRanker creates a ranker using the wall clock
func NewRanker() *Ranker {
	return &Ranker{Now: time.Now}
}

// Rank sets QualityScore on every paper and returns them sorted
// descending. Ties keep their input order.
func (r *Ranker) Rank(papers []model.Paper) []model.Paper {
	currentYear := r.Now().Year()

	ranked := make([]model.Paper, len(papers))
	copy(ranked, papers)
	for i := range ranked {
		q := Quality(ranked[i].InfluentialCount(), ranked[i].Year, currentYear)
		ranked[i].QualityScore = model.FloatPtr(q)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].QualityScore > *ranked[j].QualityScore
	})
	return ranked
}

// Quality is 0.6*influence + 0.4*recency
func Quality(influentialCitations int, year string, currentYear int) float64 {
	return influenceWeight*Influence(influentialCitations) + recencyWeight*Recency(year, currentYear)
}

// Influence is log10(ic+1)/3.5
func Influence(influentialCitations int) float64 {
	if influentialCitations < 0 {
		influentialCitations = 0
	}
	return math.Log10(float64(influentialCitations)+1) / influenceScale
}

// Recency decays linearly from 1 (this year) to 0 (20+ years old).
// An unparseable year counts as the current year.
func Recency(year string, currentYear int) float64 {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		y = currentYear
	}
	return math.Max(0, 1-float64(currentYear-y)/recencyHorizon)
}
