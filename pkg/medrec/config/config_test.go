package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/medrec/pkg/medrec/internalerr"
	"github.com/cognicore/medrec/pkg/medrec/predict"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Matcher.Threshold != 0.7 || cfg.Predictor.MinScore != 0.1 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Matcher.FoldAccents || cfg.Matcher.Phrases {
		t.Errorf("unexpected matcher toggles: %+v", cfg.Matcher)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, "medrec.yaml", `
dataset:
  dir: /data/medrec
  watch: true
matcher:
  threshold: 0.8
  corrections:
    temprature: temperature
predictor:
  common_symptoms: [fever]
llm:
  timeout: 3s
log:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dataset.Dir != "/data/medrec" || !cfg.Dataset.Watch {
		t.Errorf("dataset = %+v", cfg.Dataset)
	}
	if cfg.Matcher.Threshold != 0.8 {
		t.Errorf("threshold = %v", cfg.Matcher.Threshold)
	}
	if cfg.Matcher.RetryThreshold != 0.6 {
		t.Errorf("retry threshold default lost: %v", cfg.Matcher.RetryThreshold)
	}
	if cfg.Matcher.Corrections["temprature"] != "temperature" {
		t.Errorf("custom correction missing")
	}
	if cfg.Matcher.Corrections["feaver"] != "fever" {
		t.Errorf("default corrections should be kept")
	}
	if len(cfg.Predictor.CommonSymptoms) != 1 {
		t.Errorf("common symptoms = %v", cfg.Predictor.CommonSymptoms)
	}
	if cfg.Predictor.DefaultDisease != predict.DefaultDisease {
		t.Errorf("default disease = %q", cfg.Predictor.DefaultDisease)
	}
	if cfg.LLM.Timeout != 3*time.Second {
		t.Errorf("timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("log format = %q", cfg.Log.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "bad.yaml", "matcher: [not, a, map]\n")
	if _, err := Load(path); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above one", func(c *Config) { c.Matcher.Threshold = 1.5 }},
		{"zero threshold", func(c *Config) { c.Matcher.Threshold = 0 }},
		{"zero retry threshold", func(c *Config) { c.Matcher.RetryThreshold = 0 }},
		{"negative retry threshold", func(c *Config) { c.Matcher.RetryThreshold = -0.1 }},
		{"min score above one", func(c *Config) { c.Predictor.MinScore = 2 }},
		{"negative weight", func(c *Config) { c.Predictor.DiseaseWeight = -1 }},
		{"zero weights", func(c *Config) { c.Predictor.DiseaseWeight, c.Predictor.InputWeight = 0, 0 }},
		{"common without disease", func(c *Config) { c.Predictor.DefaultDisease = "" }},
		{"rules without file", func(c *Config) { c.Predictor.Legacy = LegacyRules }},
		{"llm without model", func(c *Config) { c.Predictor.Legacy = LegacyLLM; c.LLM.Model = "" }},
		{"unknown legacy", func(c *Config) { c.Predictor.Legacy = "oracle" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadRetryDisabledAndMappings(t *testing.T) {
	path := writeConfig(t, "medrec.yaml", `
matcher:
  threshold: 0.9
  retry_threshold: -1
  mappings:
    shakes: shivering
    cold: ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Matcher.RetryThreshold != RetryDisabled {
		t.Errorf("retry threshold = %v", cfg.Matcher.RetryThreshold)
	}
	if cfg.Matcher.Mappings["shakes"] != "shivering" || cfg.Matcher.Mappings["fever"] != "high_fever" {
		t.Errorf("mappings = %v", cfg.Matcher.Mappings)
	}
}

func TestValidateAllowsEmptyCommonDefault(t *testing.T) {
	cfg := Default()
	cfg.Predictor.CommonSymptoms = nil
	cfg.Predictor.DefaultDisease = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("MEDREC_TEST_KEY", "sk-test")
	cfg := LLMConfig{APIKeyEnv: "MEDREC_TEST_KEY"}
	if got := cfg.APIKey(); got != "sk-test" {
		t.Fatalf("APIKey = %q", got)
	}
	if got := (LLMConfig{}).APIKey(); got != "" {
		t.Fatalf("expected empty key without env name, got %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger(LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("NewLogger(%s): %v", format, err)
		}
		if !logger.Core().Enabled(-1) {
			t.Errorf("%s: debug level should be enabled", format)
		}
	}
}

func TestSampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "medrec.yaml"))
	if err != nil {
		t.Fatalf("sample config: %v", err)
	}
	if cfg.Predictor.Legacy != LegacyVoting || cfg.HTTP.Addr != ":8080" {
		t.Errorf("unexpected sample config: %+v", cfg)
	}
	if cfg.Advice.Aliases["Peptic ulcer diseae"] != "Peptic ulcer disease" {
		t.Errorf("aliases not loaded: %v", cfg.Advice.Aliases)
	}
}
