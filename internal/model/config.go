package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete claimcheck configuration.
// Precedence: CLI flags > CLAIMCHECK_* env > config file > DefaultConfig.
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Sources     SourcesConfig     `yaml:"sources" mapstructure:"sources"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Pipeline    PipelineConfig    `yaml:"pipeline" mapstructure:"pipeline"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Communities CommunitiesConfig `yaml:"communities" mapstructure:"communities"`
}

// LLMConfig selects the language-model provider. Summarizer and rewriter
// sessions fall back to Model when their own model is empty.
type LLMConfig struct {
	Provider        string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model           string  `yaml:"model" mapstructure:"model"`
	SummarizerModel string  `yaml:"summarizer_model,omitempty" mapstructure:"summarizer_model"`
	RewriterModel   string  `yaml:"rewriter_model,omitempty" mapstructure:"rewriter_model"`
	APIKey          string  `yaml:"-" mapstructure:"api_key"`
	BaseURL         string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout         int     `yaml:"timeout" mapstructure:"timeout"` // seconds, per call
	MaxTokens       int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature     float32 `yaml:"temperature" mapstructure:"temperature"`
}

// SourcesConfig configures the paper databases
type SourcesConfig struct {
	PubMedBaseURL          string  `yaml:"pubmed_base_url" mapstructure:"pubmed_base_url"`
	PubMedAPIKey           string  `yaml:"-" mapstructure:"pubmed_api_key"`
	PubMedTool             string  `yaml:"pubmed_tool" mapstructure:"pubmed_tool"`
	PubMedEmail            string  `yaml:"pubmed_email,omitempty" mapstructure:"pubmed_email"`
	PubMedRPS              float64 `yaml:"pubmed_rps" mapstructure:"pubmed_rps"`
	SemanticScholarBaseURL string  `yaml:"semantic_scholar_base_url" mapstructure:"semantic_scholar_base_url"`
	SemanticScholarAPIKey  string  `yaml:"-" mapstructure:"semantic_scholar_api_key"`
	SemanticScholarRPS     float64 `yaml:"semantic_scholar_rps" mapstructure:"semantic_scholar_rps"`
	MaxResults             int     `yaml:"max_results" mapstructure:"max_results"`
}

// HTTPConfig configures outbound HTTP to the paper databases and Reddit
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures the API response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds the fan-out points
type ConcurrencyConfig struct {
	ModelWorkers  int `yaml:"model_workers" mapstructure:"model_workers"`
	LookupWorkers int `yaml:"lookup_workers" mapstructure:"lookup_workers"`
	ClaimWorkers  int `yaml:"claim_workers" mapstructure:"claim_workers"`
}

// PipelineConfig tunes the check itself
type PipelineConfig struct {
	TopN      int           `yaml:"top_n" mapstructure:"top_n"`
	Deadline  time.Duration `yaml:"deadline" mapstructure:"deadline"`
	Language  string        `yaml:"language" mapstructure:"language"`
	Summaries bool          `yaml:"summaries" mapstructure:"summaries"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// CommunitiesConfig points at the community directory built by `communities build`
type CommunitiesConfig struct {
	Directory     string        `yaml:"directory" mapstructure:"directory"`
	Suggestions   int           `yaml:"suggestions" mapstructure:"suggestions"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	RequestDelay  time.Duration `yaml:"request_delay" mapstructure:"request_delay"`
}

// DefaultLanguage is the language narratives are generated in
const DefaultLanguage = "en"

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".claimcheck")

	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Timeout:     10,
			MaxTokens:   600,
			Temperature: 0.2,
		},
		Sources: SourcesConfig{
			PubMedBaseURL:          "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
			PubMedTool:             "claimcheck",
			PubMedRPS:              3,
			SemanticScholarBaseURL: "https://api.semanticscholar.org",
			SemanticScholarRPS:     1,
			MaxResults:             10,
		},
		HTTP: HTTPConfig{
			Timeout:      15 * time.Second,
			UserAgent:    "claimcheck/0.3 (+https://github.com/ppiankov/claimcheck)",
			MaxBodyBytes: 5_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(base, "cache"),
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			ModelWorkers:  10,
			LookupWorkers: 5,
			ClaimWorkers:  2,
		},
		Pipeline: PipelineConfig{
			TopN:      5,
			Deadline:  90 * time.Second,
			Language:  DefaultLanguage,
			Summaries: true,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Communities: CommunitiesConfig{
			Directory:     filepath.Join(base, "communities.json"),
			Suggestions:   3,
			RespectRobots: false,
			RequestDelay:  time.Second,
		},
	}
}
