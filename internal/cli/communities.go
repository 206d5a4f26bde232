package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimcheck/internal/communities"
	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/rephrase"
	"github.com/ppiankov/claimcheck/internal/sources"
	"github.com/ppiankov/claimcheck/internal/util"
	"github.com/ppiankov/claimcheck/internal/worker"
)

var (
	communitiesOut   string
	redditURL        string
	respectRobots    bool
	buildTimeout     time.Duration
	suggestionsCount int
)

// communitiesCmd groups the community directory commands
var communitiesCmd = &cobra.Command{
	Use:   "communities",
	Short: "Build and query the health community directory",
	Long: `Claimcheck suggests discussion communities next to each report. The
suggestions come from a local directory built from Reddit's public JSON.

Example:
  claimcheck communities build subreddits.txt
  claimcheck communities build subreddits.txt --out communities.csv
  claimcheck communities suggest "magnesium helps sleep"`,
}

var communitiesBuildCmd = &cobra.Command{
	Use:   "build <names-file>",
	Short: "Fetch subreddit metadata into the community directory",
	Long: `Build reads one subreddit name per line, fetches its about page and the
month's top posts at one request per second, and writes the directory as
JSON (default: the configured directory path) or CSV when --out ends in .csv.`,
	Args: cobra.ExactArgs(1),
	RunE: runCommunitiesBuild,
}

var communitiesSuggestCmd = &cobra.Command{
	Use:   "suggest <claim>",
	Short: "Suggest communities for a claim",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCommunitiesSuggest,
}

func init() {
	rootCmd.AddCommand(communitiesCmd)
	communitiesCmd.AddCommand(communitiesBuildCmd)
	communitiesCmd.AddCommand(communitiesSuggestCmd)

	communitiesBuildCmd.Flags().StringVar(&communitiesOut, "out", "", "output path, .json or .csv (default from config)")
	communitiesBuildCmd.Flags().StringVar(&redditURL, "reddit-url", "", "Reddit base URL")
	communitiesBuildCmd.Flags().BoolVar(&respectRobots, "respect-robots", false, "check robots.txt before each fetch")
	communitiesBuildCmd.Flags().DurationVar(&buildTimeout, "timeout", 30*time.Minute, "total timeout for the build")

	communitiesSuggestCmd.Flags().IntVar(&suggestionsCount, "count", 0, "number of suggestions (default from config, 3)")
}

func runCommunitiesBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("respect-robots") {
		cfg.Communities.RespectRobots = respectRobots
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	names, err := worker.ReadLinesFromFile(args[0])
	if err != nil {
		return fmt.Errorf("read names: %w", err)
	}

	out := communitiesOut
	if out == "" {
		out = cfg.Communities.Directory
	}
	base := redditURL
	if base == "" {
		base = "https://www.reddit.com"
	}

	// one request per RequestDelay to Reddit, nothing cached
	limiter := worker.NewLimiter(0, 1)
	if u, err := url.Parse(base); err == nil && cfg.Communities.RequestDelay > 0 {
		limiter.SetHostRate(u.Host, float64(time.Second)/float64(cfg.Communities.RequestDelay), 1)
	}
	client := sources.NewClient(sources.ClientOptions{
		Timeout:    cfg.HTTP.Timeout,
		UserAgent:  cfg.HTTP.UserAgent,
		MaxBytes:   cfg.HTTP.MaxBodyBytes,
		Limiter:    limiter,
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		NoProxy:    cfg.HTTP.NoProxy,
		Logger:     logger,
	})

	var robots *util.RobotsChecker
	if cfg.Communities.RespectRobots {
		robots = util.NewRobotsChecker(client.HTTPClient(), cfg.HTTP.UserAgent)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n  Community directory\n%s\n\n", rule, rule)
	fmt.Fprintf(os.Stderr, "  Subreddits:   %d\n", len(names))
	fmt.Fprintf(os.Stderr, "  Output:       %s\n", out)
	fmt.Fprintf(os.Stderr, "  robots.txt:   %v\n\n", cfg.Communities.RespectRobots)

	ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
	defer cancel()

	builder := communities.NewBuilder(client, base, robots, logger)
	dir, results := builder.Build(ctx, names)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "✗ r/%s: %v\n", strings.TrimPrefix(r.Name, "r/"), r.Err)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ r/%s (%d members, %s)\n", r.Entry.Name, r.Entry.Subscribers, strings.Join(r.Entry.PrimaryTopics, ", "))
	}

	if err := dir.Save(out); err != nil {
		return fmt.Errorf("save directory: %w", err)
	}
	fmt.Fprintf(os.Stderr, "\n✓ Saved %d of %d communities to %s\n", len(dir), len(names), out)
	return nil
}

func runCommunitiesSuggest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir, err := communities.Load(cfg.Communities.Directory)
	if err != nil {
		return err
	}
	if len(dir) == 0 {
		return fmt.Errorf("community directory %s is empty; run 'claimcheck communities build' first", cfg.Communities.Directory)
	}

	n := cfg.Communities.Suggestions
	if cmd.Flags().Changed("count") {
		n = suggestionsCount
	}

	claim := model.NewClaim(strings.Join(args, " "))
	text := claim.Text + " " + rephrase.FallbackQuery(claim.Text)
	suggestions := dir.Recommend(text, n)
	if len(suggestions) == 0 {
		fmt.Println("No matching communities.")
		return nil
	}

	for i, c := range suggestions {
		fmt.Printf("%d. r/%s (%d members)\n   %s\n", i+1, c.Name, c.Subscribers, c.URL)
		if len(c.Topics) > 0 {
			fmt.Printf("   topics: %s\n", strings.Join(c.Topics, ", "))
		}
	}
	return nil
}
