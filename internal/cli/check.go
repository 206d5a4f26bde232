package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/narrate"
	"github.com/ppiankov/claimcheck/internal/pipeline"
)

const rule = "═══════════════════════════════════════════════════════════"

var (
	outJSON     string
	outMD       string
	language    string
	timeout     time.Duration
	noCache     bool
	noFooter    bool
	noSummaries bool
	topN        int
	llmProvider string
	llmModel    string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <claim>",
	Short: "Check one health claim against published research",
	Long: `Check gathers research for a single health claim:
- Rephrase the claim into a literature query
- Search PubMed and Semantic Scholar, enrich citations, backfill abstracts
- Rank papers by influential citations and recency
- Extract study details and stance for the top papers
- Compute a truth score and write a short verdict

Example:
  claimcheck check "vitamin D prevents colds"
  claimcheck check "creatine improves memory" --json report.json --md report.md
  claimcheck check "green tea burns fat" --lang es --llm-provider anthropic`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Output flags
	checkCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	checkCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	checkCmd.Flags().StringVar(&language, "lang", "", "verdict language (en, es, ja, fr, de)")
	checkCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	addPipelineFlags(checkCmd)
	checkCmd.Flags().DurationVar(&timeout, "timeout", 0, "overall check deadline (default from config, 90s)")
}

// addPipelineFlags registers the flags shared by check and batch
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the API response cache")
	cmd.Flags().BoolVar(&noSummaries, "no-summaries", false, "skip per-paper model summaries")
	cmd.Flags().IntVar(&topN, "top", 0, "number of papers to analyze (default from config, 5)")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

// configFromFlags loads the layered configuration and applies flag overrides
func configFromFlags(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.APIKey = ""
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("no-summaries") {
		cfg.Pipeline.Summaries = !noSummaries
	}
	if flags.Changed("top") {
		cfg.Pipeline.TopN = topN
	}
	if flags.Changed("lang") {
		cfg.Pipeline.Language = strings.ToLower(language)
	}
	if flags.Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	applyEnvKeys(cfg)

	if cfg.Pipeline.Language == "" {
		cfg.Pipeline.Language = model.DefaultLanguage
	}
	if !narrate.SupportedLanguage(cfg.Pipeline.Language) {
		return nil, fmt.Errorf("unsupported language %q (supported: en, es, ja, fr, de)", cfg.Pipeline.Language)
	}
	if err := requireAPIKey(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	claim := strings.Join(args, " ")

	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Pipeline.Deadline = timeout
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", claim)
		fmt.Fprintf(os.Stderr, "Deadline: %v\n", cfg.Pipeline.Deadline)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintf(os.Stderr, "LLM: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Searching research databases...\n")
	}

	report, checkErr := p.Check(context.Background(), claim)
	if report == nil {
		return fmt.Errorf("check failed: %w", checkErr)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Query: %s\n", report.Query)
		fmt.Fprintf(os.Stderr, "✓ Found %d papers\n", len(report.Papers))
		fmt.Fprintf(os.Stderr, "✓ Truth score: %d/100\n", report.TruthScore.TruthScore)
		for _, o := range report.Stages {
			fmt.Fprintf(os.Stderr, "✗ %s degraded: %s (%s)\n", o.Stage, o.Item, o.Kind)
		}
		fmt.Fprintln(os.Stderr)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderer.RenderReport(os.Stdout, report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	switch {
	case errors.Is(checkErr, pipeline.ErrNoEvidence):
		return fmt.Errorf("%w (query: %q)", checkErr, report.Query)
	case checkErr != nil:
		return fmt.Errorf("check failed: %w", checkErr)
	}
	return nil
}
