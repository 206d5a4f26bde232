package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Vitamin D prevents colds", "vitamin-d-prevents-colds"},
		{"  Does coffee / tea cause cancer?? ", "does-coffee-tea-cause-cancer"},
		{"???", "claim"},
		{"a very long claim about intermittent fasting and longevity in older adults over sixty", "a-very-long-claim-about-intermittent-fasting-and-longevity-i"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadConfig_Layers(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  provider: ollama\npipeline:\n  top_n: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgFile = path
	t.Cleanup(func() { cfgFile = "" })

	t.Setenv("CLAIMCHECK_LLM_MODEL", "llama3")
	t.Setenv("CLAIMCHECK_PIPELINE_DEADLINE", "45s")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")
	t.Setenv("NCBI_API_KEY", "ncbi-key")

	initConfig()
	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.LLM.Provider != "ollama" || cfg.Pipeline.TopN != 3 {
		t.Errorf("config file not applied: %+v %+v", cfg.LLM, cfg.Pipeline)
	}
	if cfg.LLM.Model != "llama3" || cfg.Pipeline.Deadline != 45*time.Second {
		t.Errorf("environment not applied: model=%q deadline=%v", cfg.LLM.Model, cfg.Pipeline.Deadline)
	}
	if cfg.LLM.BaseURL != "http://ollama:11434" || cfg.Sources.PubMedAPIKey != "ncbi-key" {
		t.Errorf("conventional variables not applied: %q %q", cfg.LLM.BaseURL, cfg.Sources.PubMedAPIKey)
	}
	if cfg.Sources.MaxResults != 10 || cfg.Communities.Suggestions != 3 {
		t.Errorf("defaults lost: %+v", cfg.Sources)
	}
	if err := requireAPIKey(cfg); err != nil {
		t.Errorf("ollama needs no key: %v", err)
	}
}
