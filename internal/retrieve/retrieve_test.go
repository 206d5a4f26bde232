package retrieve

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/sources"
)

type fakePubMed struct {
	ids       []string
	searchErr error
	papers    map[string]model.Paper
	abstracts map[string]string
}

func (f *fakePubMed) Name() string { return string(model.SourcePubMed) }

func (f *fakePubMed) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.ids, nil
}

func (f *fakePubMed) Summaries(ctx context.Context, ids []string) ([]model.Paper, error) {
	var out []model.Paper
	for _, id := range ids {
		out = append(out, f.papers[id])
	}
	return out, nil
}

func (f *fakePubMed) Abstract(ctx context.Context, pmid string) (string, error) {
	if a, ok := f.abstracts[pmid]; ok {
		return a, nil
	}
	return "", fmt.Errorf("efetch %s: %w", pmid, errors.New("connection reset"))
}

type fakeScholar struct {
	papers    []model.Paper
	searchErr error
	counts    map[string][2]int // lookup id -> citations, influential

	mu      sync.Mutex
	lookups []string
}

func (f *fakeScholar) Name() string { return string(model.SourceSemanticScholar) }

func (f *fakeScholar) Search(ctx context.Context, query string, limit int) ([]model.Paper, error) {
	return f.papers, f.searchErr
}

func (f *fakeScholar) Lookup(ctx context.Context, id string) (*model.Paper, error) {
	f.mu.Lock()
	f.lookups = append(f.lookups, id)
	f.mu.Unlock()

	c, ok := f.counts[id]
	if !ok {
		return nil, sources.ErrRateLimited
	}
	return &model.Paper{Citations: model.IntPtr(c[0]), InfluentialCitations: model.IntPtr(c[1])}, nil
}

func opts() Options {
	return Options{Limit: 10, Workers: 4, JobTimeout: time.Second}
}

func TestRetrieve_BothSourcesEmpty(t *testing.T) {
	r := New(&fakePubMed{}, &fakeScholar{}, opts())

	got := r.Retrieve(context.Background(), "vitamin d colds")
	if len(got.Papers) != 0 {
		t.Errorf("expected no papers, got %d", len(got.Papers))
	}
	if len(got.Stages) != 0 {
		t.Errorf("empty results are not degradations: %+v", got.Stages)
	}
}

func TestRetrieve_RateLimitedSourceIsSoftFailure(t *testing.T) {
	pm := &fakePubMed{
		ids: []string{"1"},
		papers: map[string]model.Paper{
			"1": {Title: "Zinc lozenges", PMID: "1", DOI: "10.1/zinc", Source: model.SourcePubMed},
		},
		abstracts: map[string]string{"1": "Zinc shortened colds."},
	}
	s2 := &fakeScholar{
		searchErr: fmt.Errorf("semantic scholar search: %w", sources.ErrRateLimited),
		counts:    map[string][2]int{"DOI:10.1/zinc": {50, 4}},
	}
	r := New(pm, s2, opts())

	got := r.Retrieve(context.Background(), "zinc cold")
	if len(got.Papers) != 1 {
		t.Fatalf("expected PubMed paper to survive, got %d", len(got.Papers))
	}
	p := got.Papers[0]
	if *p.Citations != 50 || *p.InfluentialCitations != 4 {
		t.Errorf("expected enrichment from DOI lookup, got %+v", p)
	}
	if p.Abstract != "Zinc shortened colds." {
		t.Errorf("expected backfilled abstract, got %q", p.Abstract)
	}

	if len(got.Stages) != 1 {
		t.Fatalf("expected one degraded stage, got %+v", got.Stages)
	}
	s := got.Stages[0]
	if s.Stage != model.StageSearch || s.Item != "semantic_scholar" || s.Kind != model.FailureRateLimited {
		t.Errorf("unexpected outcome: %+v", s)
	}
}

func TestRetrieve_EnrichmentFailureIsIsolated(t *testing.T) {
	pm := &fakePubMed{
		ids: []string{"1", "2", "3"},
		papers: map[string]model.Paper{
			"1": {Title: "A", PMID: "1", DOI: "10.1/a"},
			"2": {Title: "B", PMID: "2"},
			"3": {Title: "C", PMID: "3", DOI: "10.1/c"},
		},
		abstracts: map[string]string{"1": "a", "2": "b", "3": "c"},
	}
	s2 := &fakeScholar{counts: map[string][2]int{
		"DOI:10.1/a": {10, 1},
		"PMID:3":     {30, 3}, // DOI lookup fails, PMID lookup succeeds
	}}
	r := New(pm, s2, opts())

	got := r.Retrieve(context.Background(), "q")
	if len(got.Papers) != 3 {
		t.Fatalf("expected 3 papers, got %d", len(got.Papers))
	}

	byTitle := map[string]*model.Paper{}
	for i := range got.Papers {
		byTitle[got.Papers[i].Title] = &got.Papers[i]
	}
	if byTitle["A"].InfluentialCount() != 1 {
		t.Errorf("A: expected 1 influential citation, got %d", byTitle["A"].InfluentialCount())
	}
	if !byTitle["B"].HasCitations() || *byTitle["B"].Citations != 0 {
		t.Errorf("B: expected zero counts after failed lookup, got %+v", byTitle["B"])
	}
	if *byTitle["C"].Citations != 30 {
		t.Errorf("C: expected PMID fallback lookup, got %+v", byTitle["C"])
	}

	enrich := 0
	for _, s := range got.Stages {
		if s.Stage == model.StageEnrich {
			enrich++
			if s.Item != "B" || s.Kind != model.FailureRateLimited {
				t.Errorf("unexpected enrich outcome: %+v", s)
			}
		}
	}
	if enrich != 1 {
		t.Errorf("expected exactly one enrichment degradation, got %d", enrich)
	}
}

func TestRetrieve_DropsPapersWithoutAbstract(t *testing.T) {
	pm := &fakePubMed{
		ids: []string{"1", "2"},
		papers: map[string]model.Paper{
			"1": {Title: "Has abstract", PMID: "1"},
			"2": {Title: "Fetch fails", PMID: "2"},
		},
		abstracts: map[string]string{"1": "text"},
	}
	r := New(pm, &fakeScholar{}, opts())

	got := r.Retrieve(context.Background(), "q")
	if len(got.Papers) != 1 || got.Papers[0].Title != "Has abstract" {
		t.Fatalf("unexpected papers: %+v", got.Papers)
	}
	if len(got.Stages) == 0 {
		t.Fatal("expected backfill degradation to be recorded")
	}
}

func TestMerge_SemanticScholarWins(t *testing.T) {
	scholar := []model.Paper{
		{Title: "Vitamin D and Colds", DOI: "10.1/ABC", Source: model.SourceSemanticScholar},
		{Title: "Only in S2", Source: model.SourceSemanticScholar},
	}
	pubmed := []model.Paper{
		{Title: "vitamin d and colds", Source: model.SourcePubMed},              // same title
		{Title: "Different title", DOI: "10.1/abc", Source: model.SourcePubMed}, // same DOI
		{Title: "Only in PubMed", Source: model.SourcePubMed},
	}

	merged := Merge(scholar, pubmed)
	if len(merged) != 3 {
		t.Fatalf("expected 3 papers, got %d: %+v", len(merged), merged)
	}
	if merged[0].Source != model.SourceSemanticScholar || merged[0].Title != "Vitamin D and Colds" {
		t.Errorf("expected Semantic Scholar entry first, got %+v", merged[0])
	}
	if merged[2].Title != "Only in PubMed" {
		t.Errorf("expected unique PubMed paper last, got %+v", merged[2])
	}
}
