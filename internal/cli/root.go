package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/claimcheck/internal/logging"
	"github.com/ppiankov/claimcheck/internal/model"
)

const version = "claimcheck v0.3.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimcheck",
	Short: "Claimcheck - research evidence for health claims",
	Long: `Claimcheck looks up published research for a health claim.

It turns the claim into a literature query, gathers papers from PubMed and
Semantic Scholar, ranks them by influence and recency, asks a language
model how each of the top papers relates to the claim and combines the
answers into a 0-100 truth score with a short plain-language verdict.

The score summarizes abstracts. It is not medical advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of claimcheck.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimcheck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env, the config file and CLAIMCHECK_* variables
func initConfig() {
	// A .env in the working directory may hold API keys; real env wins
	if err := godotenv.Load(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Loaded .env\n")
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".claimcheck"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CLAIMCHECK_*, e.g.
	// CLAIMCHECK_LLM_PROVIDER for llm.provider
	viper.SetEnvPrefix("CLAIMCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := registerDefaults(model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// keys that are never written to YAML but may still come from env or file
var extraKeys = []string{
	"llm.api_key",
	"llm.summarizer_model",
	"llm.rewriter_model",
	"llm.base_url",
	"sources.pubmed_api_key",
	"sources.pubmed_email",
	"sources.semantic_scholar_api_key",
	"http.http_proxy",
	"http.https_proxy",
	"http.no_proxy",
}

// registerDefaults makes every config key known to viper so AutomaticEnv
// can override keys that the config file does not mention
func registerDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("read defaults: %w", err)
	}
	setDefaults("", tree)

	for _, key := range extraKeys {
		_ = viper.BindEnv(key)
	}
	return nil
}

func setDefaults(prefix string, tree map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			setDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig layers the config file and CLAIMCHECK_* variables over the
// defaults, then picks up provider keys from their conventional variables
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	applyEnvKeys(cfg)
	return cfg, nil
}

func applyEnvKeys(cfg *model.Config) {
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if cfg.LLM.Provider == "ollama" && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if cfg.Sources.PubMedAPIKey == "" {
		cfg.Sources.PubMedAPIKey = os.Getenv("NCBI_API_KEY")
	}
	if cfg.Sources.SemanticScholarAPIKey == "" {
		cfg.Sources.SemanticScholarAPIKey = os.Getenv("S2_API_KEY")
	}
}

// requireAPIKey fails early when a hosted provider has no key
func requireAPIKey(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	}
	return nil
}

func newLogger(cfg *model.Config) *zap.Logger {
	logger, err := logging.New(verbose || cfg.Output.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logger unavailable: %v\n", err)
		return zap.NewNop()
	}
	return logger
}
