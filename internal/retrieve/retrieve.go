// Package retrieve gathers candidate papers from PubMed and Semantic Scholar.
package retrieve

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/claimcheck/internal/logging"
	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/sources"
	"github.com/ppiankov/claimcheck/internal/worker"
)

// PubMedSource is the id-search + batch-summary + abstract database
type PubMedSource interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]string, error)
	Summaries(ctx context.Context, ids []string) ([]model.Paper, error)
	Abstract(ctx context.Context, pmid string) (string, error)
}

// CitationSource returns full papers with citation counts
type CitationSource interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]model.Paper, error)
	Lookup(ctx context.Context, id string) (*model.Paper, error)
}

// Options tunes a Retriever
type Options struct {
	Limit      int           // results per source
	Workers    int           // concurrent lookups
	JobTimeout time.Duration // per lookup
	Logger     *zap.Logger
}

// Retriever runs both searches, enriches, merges and backfills
type Retriever struct {
	pubmed  PubMedSource
	scholar CitationSource
	limit   int
	workers int
	timeout time.Duration
	logger  *zap.Logger
}

// Retrieval is the merged, abstract-bearing paper set plus any degradations
type Retrieval struct {
	Papers       []model.Paper
	PubMedCount  int
	ScholarCount int
	Stages       []model.StageOutcome
}

// New creates a Retriever
func New(pubmed PubMedSource, scholar CitationSource, opts Options) *Retriever {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.Workers <= 0 {
		opts.Workers = 5
	}
	return &Retriever{
		pubmed:  pubmed,
		scholar: scholar,
		limit:   opts.Limit,
		workers: opts.Workers,
		timeout: opts.JobTimeout,
		logger:  logging.OrNop(opts.Logger),
	}
}

// Retrieve never fails: an unavailable source contributes zero papers and a
// StageOutcome. An empty Papers slice is the caller's "no evidence" case.
func (r *Retriever) Retrieve(ctx context.Context, query model.SearchQuery) *Retrieval {
	out := &Retrieval{}

	var pubmedRes, scholarRes model.Result[[]model.Paper]
	var g errgroup.Group
	g.Go(func() error {
		pubmedRes = r.searchPubMed(ctx, query.String())
		return nil
	})
	g.Go(func() error {
		scholarRes = r.searchScholar(ctx, query.String())
		return nil
	})
	_ = g.Wait()

	record(out, r.logger, model.StageSearch, r.scholar.Name(), scholarRes)
	record(out, r.logger, model.StageSearch, r.pubmed.Name(), pubmedRes)
	out.PubMedCount = len(pubmedRes.Value)
	out.ScholarCount = len(scholarRes.Value)

	pubmedPapers := r.enrich(ctx, pubmedRes.Value, out)
	merged := Merge(scholarRes.Value, pubmedPapers)
	merged = r.backfill(ctx, merged, out)

	out.Papers = make([]model.Paper, 0, len(merged))
	for _, p := range merged {
		if p.HasAbstract() {
			out.Papers = append(out.Papers, p)
		}
	}

	r.logger.Debug("retrieval complete",
		zap.String("query", query.String()),
		zap.Int("pubmed", out.PubMedCount),
		zap.Int("semantic_scholar", out.ScholarCount),
		zap.Int("kept", len(out.Papers)),
	)
	return out
}

func (r *Retriever) searchPubMed(ctx context.Context, query string) model.Result[[]model.Paper] {
	ids, err := r.pubmed.Search(ctx, query, r.limit)
	if err != nil {
		return model.Fallback[[]model.Paper](nil, model.FailureSourceUnavailable, err)
	}
	if len(ids) == 0 {
		return model.OK[[]model.Paper](nil)
	}
	papers, err := r.pubmed.Summaries(ctx, ids)
	if err != nil {
		return model.Fallback[[]model.Paper](nil, model.FailureSourceUnavailable, err)
	}
	return model.OK(papers)
}

func (r *Retriever) searchScholar(ctx context.Context, query string) model.Result[[]model.Paper] {
	papers, err := r.scholar.Search(ctx, query, r.limit)
	if err != nil {
		return model.Fallback[[]model.Paper](nil, model.FailureSourceUnavailable, err)
	}
	return model.OK(papers)
}

type citations struct {
	total       int
	influential int
}

// enrich looks up citation counts for PubMed papers, one job per paper.
// A failed lookup yields zero counts for that paper only.
func (r *Retriever) enrich(ctx context.Context, papers []model.Paper, out *Retrieval) []model.Paper {
	var pending []int
	for i := range papers {
		if !papers[i].HasCitations() {
			pending = append(pending, i)
		}
	}

	results := worker.Map(ctx, r.workers, r.timeout, pending, func(ctx context.Context, i int) model.Result[citations] {
		return r.lookupCitations(ctx, &papers[i])
	})

	for j, i := range pending {
		res := results[j]
		record(out, r.logger, model.StageEnrich, papers[i].Title, res)
		papers[i].Citations = model.IntPtr(res.Value.total)
		papers[i].InfluentialCitations = model.IntPtr(res.Value.influential)
	}
	return papers
}

func (r *Retriever) lookupCitations(ctx context.Context, p *model.Paper) model.Result[citations] {
	var keys []string
	if p.DOI != "" {
		keys = append(keys, sources.DOIKey(p.DOI))
	}
	if p.PMID != "" {
		keys = append(keys, sources.PMIDKey(p.PMID))
	}
	if len(keys) == 0 {
		return model.OK(citations{})
	}

	var errs []error
	for _, key := range keys {
		found, err := r.scholar.Lookup(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c := citations{}
		if found.Citations != nil {
			c.total = *found.Citations
		}
		if found.InfluentialCitations != nil {
			c.influential = *found.InfluentialCitations
		}
		return model.OK(c)
	}
	return model.Fallback(citations{}, model.FailureSourceUnavailable, errors.Join(errs...))
}

// backfill fetches abstracts for papers that have a PMID but no abstract
func (r *Retriever) backfill(ctx context.Context, papers []model.Paper, out *Retrieval) []model.Paper {
	var pending []int
	for i := range papers {
		if !papers[i].HasAbstract() && papers[i].PMID != "" {
			pending = append(pending, i)
		}
	}

	results := worker.Map(ctx, r.workers, r.timeout, pending, func(ctx context.Context, i int) model.Result[string] {
		abstract, err := r.pubmed.Abstract(ctx, papers[i].PMID)
		if err != nil {
			return model.Fallback("", model.FailureSourceUnavailable, err)
		}
		return model.OK(abstract)
	})

	for j, i := range pending {
		record(out, r.logger, model.StageAbstract, papers[i].Title, results[j])
		papers[i].Abstract = results[j].Value
	}
	return papers
}

// Merge appends PubMed papers to the Semantic Scholar list, dropping any
// whose DOI (case-insensitive) or lowercased title was already seen.
func Merge(scholar, pubmed []model.Paper) []model.Paper {
	seen := make(map[string]struct{})
	merged := make([]model.Paper, 0, len(scholar)+len(pubmed))

	add := func(p model.Paper) {
		for _, key := range p.DedupKeys() {
			seen[key] = struct{}{}
		}
		merged = append(merged, p)
	}

	for _, p := range scholar {
		add(p)
	}
next:
	for _, p := range pubmed {
		for _, key := range p.DedupKeys() {
			if _, dup := seen[key]; dup {
				continue next
			}
		}
		add(p)
	}
	return merged
}

func record[T any](out *Retrieval, logger *zap.Logger, stage, item string, res model.Result[T]) {
	o, ok := model.Outcome(stage, item, res)
	if !ok {
		return
	}
	logging.Degraded(logger, o)
	out.Stages = append(out.Stages, o)
}
