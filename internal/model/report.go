package model

import "time"

// Breakdown holds the quality-weighted stance shares as integer percentages.
// The three buckets are rounded independently and need not sum to 100.
type Breakdown struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// TruthScore is the net support for a claim, floored at zero
type TruthScore struct {
	TruthScore int       `json:"truth_score"` // 0-100
	Confidence int       `json:"confidence"`  // 50, 60, 80 or 90 by paper count
	PaperCount int       `json:"paper_count"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Community is a discussion community suggested alongside the evidence
type Community struct {
	Name        string   `json:"name"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Subscribers int      `json:"subscribers"`
	URL         string   `json:"url"`
	Topics      []string `json:"primary_topics,omitempty"`
	GoodFor     []string `json:"good_for,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Report is the complete result of one claim check
type Report struct {
	ID          string         `json:"id"`
	Claim       Claim          `json:"claim"`
	Query       SearchQuery    `json:"query"`
	Narrative   string         `json:"narrative,omitempty"`
	Papers      []Paper        `json:"papers"`
	TruthScore  TruthScore     `json:"truth_score"`
	Language    string         `json:"language"`
	Communities []Community    `json:"communities,omitempty"`
	Stages      []StageOutcome `json:"degraded_stages,omitempty"`
	CheckedAt   time.Time      `json:"checked_at"`
	Duration    time.Duration  `json:"duration_ns"`
}

// Verdict is the terminal tuple handed to the presentation layer
type Verdict struct {
	Narrative  string     `json:"narrative"`
	Papers     []Paper    `json:"papers"`
	TruthScore TruthScore `json:"truth_score"`
	Language   string     `json:"language"`
}

// Verdict extracts the presentation tuple from the report
func (r *Report) Verdict() Verdict {
	return Verdict{
		Narrative:  r.Narrative,
		Papers:     r.Papers,
		TruthScore: r.TruthScore,
		Language:   r.Language,
	}
}

// Degraded reports whether any stage fell back to a default
func (r *Report) Degraded() bool {
	return len(r.Stages) > 0
}

// DegradedStage returns the outcomes recorded for the given stage
func (r *Report) DegradedStage(stage string) []StageOutcome {
	var out []StageOutcome
	for _, s := range r.Stages {
		if s.Stage == stage {
			out = append(out, s)
		}
	}
	return out
}
