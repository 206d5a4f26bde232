package pipeline

import (
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/ppiankov/claimcheck/internal/cache"
	"github.com/ppiankov/claimcheck/internal/communities"
	"github.com/ppiankov/claimcheck/internal/llm"
	"github.com/ppiankov/claimcheck/internal/logging"
	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/sources"
	"github.com/ppiankov/claimcheck/internal/worker"
)

// NCBI allows 3 requests per second without a key and 10 with one
const ncbiKeyedRPS = 10

// NewResponseCache returns the API response cache described by cfg
func NewResponseCache(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return cache.Nop{}
	}
	return cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
}

// NewSourceClient builds the HTTP client shared by PubMed and Semantic
// Scholar, paced per host at each database's published rate
func NewSourceClient(cfg *model.Config, logger *zap.Logger) *sources.Client {
	limiter := worker.NewLimiter(0, 1)

	pubmedRPS := cfg.Sources.PubMedRPS
	if cfg.Sources.PubMedAPIKey != "" && pubmedRPS < ncbiKeyedRPS {
		pubmedRPS = ncbiKeyedRPS
	}
	if host := hostOf(cfg.Sources.PubMedBaseURL); host != "" {
		limiter.SetHostRate(host, pubmedRPS, 1)
	}
	if host := hostOf(cfg.Sources.SemanticScholarBaseURL); host != "" {
		limiter.SetHostRate(host, cfg.Sources.SemanticScholarRPS, 1)
	}

	return sources.NewClient(sources.ClientOptions{
		Timeout:    cfg.HTTP.Timeout,
		UserAgent:  cfg.HTTP.UserAgent,
		MaxBytes:   cfg.HTTP.MaxBodyBytes,
		Limiter:    limiter,
		Cache:      NewResponseCache(cfg),
		CacheTTL:   cfg.Cache.DiskTTL,
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		NoProxy:    cfg.HTTP.NoProxy,
		Logger:     logger,
	})
}

// NewFromConfig wires the real databases, model sessions and community
// directory. A missing directory file only disables suggestions.
func NewFromConfig(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if cfg.LLM.Provider != "" {
		if _, err := llm.NewProvider(llm.ConfigFromModel(cfg)); err != nil {
			return nil, fmt.Errorf("language model: %w", err)
		}
	}

	client := NewSourceClient(cfg, logger)
	s := cfg.Sources

	var directory communities.Directory
	if cfg.Communities.Directory != "" && cfg.Communities.Suggestions > 0 {
		d, err := communities.Load(cfg.Communities.Directory)
		if err != nil {
			return nil, fmt.Errorf("community directory: %w", err)
		}
		directory = d
	}

	sessions := llm.NewSessions(llm.ConfigFromModel(cfg), llm.SessionModels(cfg))
	if !sessions.Enabled() {
		logging.OrNop(logger).Warn("no language model configured, model stages will fall back")
	}

	return New(cfg, Deps{
		Sessions:  sessions,
		PubMed:    sources.NewPubMed(client, s.PubMedBaseURL, s.PubMedAPIKey, s.PubMedTool, s.PubMedEmail),
		Scholar:   sources.NewSemanticScholar(client, s.SemanticScholarBaseURL, s.SemanticScholarAPIKey),
		Directory: directory,
		Logger:    logger,
	}), nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
