package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/claimcheck/internal/communities"
	"github.com/ppiankov/claimcheck/internal/extract"
	"github.com/ppiankov/claimcheck/internal/llm"
	"github.com/ppiankov/claimcheck/internal/logging"
	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/narrate"
	"github.com/ppiankov/claimcheck/internal/rank"
	"github.com/ppiankov/claimcheck/internal/rephrase"
	"github.com/ppiankov/claimcheck/internal/retrieve"
	"github.com/ppiankov/claimcheck/internal/score"
	"github.com/ppiankov/claimcheck/internal/worker"
)

// ErrNoEvidence means no paper with an abstract was found for the query
var ErrNoEvidence = errors.New("no research papers found for this claim")

// Deps are the collaborators a Pipeline talks to
type Deps struct {
	Sessions  *llm.Sessions
	PubMed    retrieve.PubMedSource
	Scholar   retrieve.CitationSource
	Directory communities.Directory
	Logger    *zap.Logger
}

// Pipeline orchestrates one claim check, strictly left to right:
// rephrase, retrieve, rank, analyze, score, narrate, translate.
type Pipeline struct {
	rephraser  *rephrase.Rephraser
	retriever  *retrieve.Retriever
	ranker     *rank.Ranker
	summarizer *extract.Summarizer
	metadata   *extract.MetadataExtractor
	sentiment  *extract.SentimentExtractor
	scorer     *score.TruthScorer
	narrator   *narrate.Narrator
	translator *narrate.Translator
	directory  communities.Directory
	config     *model.Config
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a pipeline. A nil Sessions disables every model call, so each
// model stage falls back and the narrative fails.
func New(cfg *model.Config, deps Deps) *Pipeline {
	logger := logging.OrNop(deps.Logger)
	callTimeout := time.Duration(cfg.LLM.Timeout) * time.Second

	return &Pipeline{
		rephraser: rephrase.New(deps.Sessions, callTimeout),
		retriever: retrieve.New(deps.PubMed, deps.Scholar, retrieve.Options{
			Limit:      cfg.Sources.MaxResults,
			Workers:    cfg.Concurrency.LookupWorkers,
			JobTimeout: cfg.HTTP.Timeout,
			Logger:     logger,
		}),
		ranker:     rank.NewRanker(),
		summarizer: extract.NewSummarizer(deps.Sessions, callTimeout),
		metadata:   extract.NewMetadataExtractor(deps.Sessions, callTimeout),
		sentiment:  extract.NewSentimentExtractor(deps.Sessions, callTimeout),
		scorer:     score.NewTruthScorer(),
		narrator:   narrate.NewNarrator(deps.Sessions, callTimeout),
		translator: narrate.NewTranslator(deps.Sessions, callTimeout),
		directory:  deps.Directory,
		config:     cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Check runs the whole pipeline for one claim. The report is returned
// alongside ErrNoEvidence and narrative failures so callers can still
// show what was gathered.
func (p *Pipeline) Check(ctx context.Context, text string) (*model.Report, error) {
	start := p.now()
	if p.config.Pipeline.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Pipeline.Deadline)
		defer cancel()
	}

	claim := model.NewClaim(text)
	report := &model.Report{
		ID:        uuid.NewString(),
		Claim:     claim,
		Language:  p.language(),
		CheckedAt: start.UTC(),
	}
	finish := func() {
		report.Duration = p.now().Sub(start)
		p.logger.Info("check finished",
			zap.String("id", report.ID),
			zap.Int("truth_score", report.TruthScore.TruthScore),
			zap.Int("papers", len(report.Papers)),
			zap.Int("degraded", len(report.Stages)),
			zap.Duration("duration", report.Duration),
		)
	}

	// 1. Rephrase
	query, err := p.rephraser.Rephrase(ctx, claim)
	if err != nil {
		return nil, fmt.Errorf("rephrase: %w", err)
	}
	record(p, report, model.StageRephrase, "", query)
	report.Query = query.Value

	// 2. Retrieve
	retrieval := p.retriever.Retrieve(ctx, query.Value)
	report.Stages = append(report.Stages, retrieval.Stages...)
	report.Communities = p.suggest(claim, query.Value)

	if len(retrieval.Papers) == 0 {
		report.Papers = []model.Paper{}
		report.TruthScore = p.scorer.Calculate(nil, 0)
		finish()
		return report, ErrNoEvidence
	}

	// 3. Rank, 4. analyze the top N in place
	ranked := p.ranker.Rank(retrieval.Papers)
	topN := max(0, min(p.config.Pipeline.TopN, len(ranked)))
	p.analyze(ctx, claim, ranked[:topN], report)
	report.Papers = ranked

	// 5. Score over every surviving paper
	report.TruthScore = p.scorer.Calculate(ranked, len(ranked))

	// 6. Narrate
	narrative, err := p.narrator.Generate(ctx, claim, report.TruthScore, ranked)
	if err != nil {
		finish()
		return report, err
	}

	// 7. Translate
	translated := p.translator.Translate(ctx, narrative, report.Language)
	record(p, report, model.StageTranslate, report.Language, translated)
	report.Narrative = translated.Value

	finish()
	return report, nil
}

type analysisJob struct {
	index int
	stage string // model.StageMetadata or model.StageSentiment
}

type analysis struct {
	metadata  model.Result[*model.StudyMetadata]
	summary   model.Result[string]
	sentiment model.Result[model.PaperSentiment]
}

// analyze runs two independent jobs per paper: metadata, and summary
// followed by sentiment. Results are written back in paper order.
func (p *Pipeline) analyze(ctx context.Context, claim model.Claim, papers []model.Paper, report *model.Report) {
	jobs := make([]analysisJob, 0, 2*len(papers))
	for i := range papers {
		jobs = append(jobs,
			analysisJob{index: i, stage: model.StageMetadata},
			analysisJob{index: i, stage: model.StageSentiment},
		)
	}

	results := worker.Map(ctx, p.config.Concurrency.ModelWorkers, 0, jobs, func(ctx context.Context, job analysisJob) analysis {
		paper := papers[job.index]
		var a analysis
		if job.stage == model.StageMetadata {
			a.metadata = p.metadata.Extract(ctx, paper)
			return a
		}
		if p.config.Pipeline.Summaries {
			a.summary = p.summarizer.Summarize(ctx, paper)
			paper.Summary = a.summary.Value
		}
		a.sentiment = p.sentiment.Extract(ctx, claim, paper)
		return a
	})

	for i, job := range jobs {
		paper := &papers[job.index]
		a := results[i]
		if job.stage == model.StageMetadata {
			paper.StudyMetadata = a.metadata.Value
			record(p, report, model.StageMetadata, paper.Title, a.metadata)
			continue
		}
		if p.config.Pipeline.Summaries {
			paper.Summary = a.summary.Value
			record(p, report, model.StageSummary, paper.Title, a.summary)
		}
		sentiment := a.sentiment.Value
		paper.Sentiment = &sentiment
		record(p, report, model.StageSentiment, paper.Title, a.sentiment)
	}
}

func (p *Pipeline) suggest(claim model.Claim, query model.SearchQuery) []model.Community {
	if len(p.directory) == 0 || p.config.Communities.Suggestions <= 0 {
		return nil
	}
	return p.directory.Recommend(claim.Text+" "+query.String(), p.config.Communities.Suggestions)
}

func (p *Pipeline) language() string {
	if p.config.Pipeline.Language == "" {
		return model.DefaultLanguage
	}
	return p.config.Pipeline.Language
}

func record[T any](p *Pipeline, report *model.Report, stage, item string, res model.Result[T]) {
	outcome, degraded := model.Outcome(stage, item, res)
	if !degraded {
		return
	}
	logging.Degraded(p.logger, outcome)
	report.Stages = append(report.Stages, outcome)
}
