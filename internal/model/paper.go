package model

import (
	"strings"
)

// Source identifies which research database a paper came from
type Source string

const (
	SourcePubMed          Source = "pubmed"
	SourceSemanticScholar Source = "semantic_scholar"
)

// Paper is a research paper gathered as evidence for a claim.
// Pipeline stages fill in Summary, StudyMetadata, Sentiment and QualityScore.
type Paper struct {
	Title                string   `json:"title"`
	Authors              []string `json:"authors,omitempty"`
	Journal              string   `json:"journal,omitempty"`
	Year                 string   `json:"year,omitempty"`
	Source               Source   `json:"source"`
	DOI                  string   `json:"doi,omitempty"`
	PMID                 string   `json:"pmid,omitempty"`
	PaperID              string   `json:"paper_id,omitempty"` // Semantic Scholar corpus id
	URL                  string   `json:"url"`
	Abstract             string   `json:"abstract,omitempty"`
	Citations            *int     `json:"citations,omitempty"`
	InfluentialCitations *int     `json:"influential_citations,omitempty"`

	Summary       string          `json:"summary,omitempty"`
	StudyMetadata *StudyMetadata  `json:"study_metadata,omitempty"`
	Sentiment     *PaperSentiment `json:"sentiment,omitempty"`
	QualityScore  *float64        `json:"quality_score,omitempty"`
}

// DedupKeys returns the identities used when merging sources: the
// lowercased title and, when present, the DOI. Two papers sharing any key
// are the same paper.
func (p *Paper) DedupKeys() []string {
	keys := []string{"title:" + NormalizeTitle(p.Title)}
	if doi := NormalizeDOI(p.DOI); doi != "" {
		keys = append(keys, "doi:"+doi)
	}
	return keys
}

// HasAbstract reports whether the paper carries abstract text
func (p *Paper) HasAbstract() bool {
	return strings.TrimSpace(p.Abstract) != ""
}

// HasCitations reports whether citation counts are known
func (p *Paper) HasCitations() bool {
	return p.Citations != nil && p.InfluentialCitations != nil
}

// BestSummary returns the model summary if one exists, else a truncated abstract
func (p *Paper) BestSummary() string {
	if s := strings.TrimSpace(p.Summary); s != "" {
		return s
	}
	return TruncateAbstract(p.Abstract, SummaryFallbackChars)
}

// InfluentialCount returns influential citations, zero when unknown
func (p *Paper) InfluentialCount() int {
	if p.InfluentialCitations == nil {
		return 0
	}
	return *p.InfluentialCitations
}

// Quality returns the quality score or the given default when unset
func (p *Paper) Quality(def float64) float64 {
	if p.QualityScore == nil {
		return def
	}
	return *p.QualityScore
}

// SummaryFallbackChars bounds the abstract-based summary fallback
const SummaryFallbackChars = 300

// TruncateAbstract cuts text to max runes on a word boundary and appends "..."
func TruncateAbstract(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	cut := string(runes[:max])
	if idx := strings.LastIndex(cut, " "); idx > max/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,;:.") + "..."
}

// NormalizeDOI lowercases a DOI and strips resolver prefixes
func NormalizeDOI(doi string) string {
	doi = strings.ToLower(strings.TrimSpace(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "doi:"} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return doi
}

// NormalizeTitle lowercases and trims a title for duplicate detection
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// IntPtr is a small helper for optional counts
func IntPtr(v int) *int {
	return &v
}

// FloatPtr is a small helper for optional scores
func FloatPtr(v float64) *float64 {
	return &v
}
