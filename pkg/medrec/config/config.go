// Package config loads the medrec YAML configuration and builds the
// components it describes.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/medrec/pkg/medrec/internalerr"
	"github.com/cognicore/medrec/pkg/medrec/match"
	"github.com/cognicore/medrec/pkg/medrec/normalize"
	"github.com/cognicore/medrec/pkg/medrec/predict"
)

// Legacy strategy names accepted by predictor.legacy.
const (
	LegacyVoting = "voting"
	LegacyRules  = "rules"
	LegacyLLM    = "llm"
	LegacyNone   = "none"
)

// RetryDisabled as matcher.retry_threshold turns off the comma-split retry.
const RetryDisabled = -1

// Config is the full application configuration.
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset"`
	Matcher   MatcherConfig   `yaml:"matcher"`
	Predictor PredictorConfig `yaml:"predictor"`
	Advice    AdviceConfig    `yaml:"advice"`
	LLM       LLMConfig       `yaml:"llm"`
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
}

// DatasetConfig locates the CSV directory and the SQLite database.
type DatasetConfig struct {
	Dir   string `yaml:"dir"`
	DB    string `yaml:"db"`
	Watch bool   `yaml:"watch"`
}

// MatcherConfig controls symptom extraction. Corrections and Mappings are
// merged over the built-in tables. A Mappings entry with an empty target is
// dropped.
type MatcherConfig struct {
	Threshold      float64           `yaml:"threshold"`
	RetryThreshold float64           `yaml:"retry_threshold"`
	FoldAccents    bool              `yaml:"fold_accents"`
	Phrases        bool              `yaml:"phrases"`
	Corrections    map[string]string `yaml:"corrections"`
	Mappings       map[string]string `yaml:"mappings"`
}

// PredictorConfig controls disease scoring and the fallback tiers.
type PredictorConfig struct {
	DiseaseWeight  float64  `yaml:"disease_weight"`
	InputWeight    float64  `yaml:"input_weight"`
	MinScore       float64  `yaml:"min_score"`
	CommonSymptoms []string `yaml:"common_symptoms"`
	DefaultDisease string   `yaml:"default_disease"`
	Legacy         string   `yaml:"legacy"`
	RulesFile      string   `yaml:"rules_file"`
}

// AdviceConfig adds disease-name aliases to the care catalog.
type AdviceConfig struct {
	Aliases map[string]string `yaml:"aliases"`
}

// LLMConfig configures the optional language-model fallback.
type LLMConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout"`
}

// HTTPConfig configures the HTTP front end.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig selects the zap level and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Dataset: DatasetConfig{Dir: "dataset"},
		Matcher: MatcherConfig{
			Threshold:      match.DefaultThreshold,
			RetryThreshold: 0.6,
			Corrections:    normalize.DefaultCorrections(),
			Mappings:       match.DefaultMappings(),
		},
		Predictor: PredictorConfig{
			DiseaseWeight:  0.5,
			InputWeight:    0.5,
			MinScore:       0.1,
			CommonSymptoms: append([]string(nil), predict.DefaultCommonSymptoms...),
			DefaultDisease: predict.DefaultDisease,
			Legacy:         LegacyVoting,
		},
		LLM: LLMConfig{
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
			Timeout:   15 * time.Second,
		},
		HTTP: HTTPConfig{Addr: ":8080"},
		Log:  LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w: %v", path, internalerr.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{internalerr.ErrInvalidConfig}, args...)...))
	}

	if c.Matcher.Threshold <= 0 || c.Matcher.Threshold > 1 {
		bad("matcher.threshold %v outside (0,1]", c.Matcher.Threshold)
	}
	if r := c.Matcher.RetryThreshold; r != RetryDisabled && (r <= 0 || r > 1) {
		bad("matcher.retry_threshold %v outside (0,1] (use %d to disable)", r, RetryDisabled)
	}
	if c.Predictor.MinScore < 0 || c.Predictor.MinScore > 1 {
		bad("predictor.min_score %v outside [0,1]", c.Predictor.MinScore)
	}
	if c.Predictor.DiseaseWeight < 0 || c.Predictor.InputWeight < 0 {
		bad("predictor weights must not be negative")
	} else if c.Predictor.DiseaseWeight+c.Predictor.InputWeight == 0 {
		bad("predictor weights sum to zero")
	}
	if len(c.Predictor.CommonSymptoms) > 0 && c.Predictor.DefaultDisease == "" {
		bad("predictor.default_disease is required when common_symptoms are set")
	}

	switch c.Predictor.Legacy {
	case LegacyVoting, LegacyNone, "":
	case LegacyRules:
		if c.Predictor.RulesFile == "" {
			bad("predictor.rules_file is required for the rules strategy")
		}
	case LegacyLLM:
		if c.LLM.Model == "" {
			bad("llm.model is required for the llm strategy")
		}
	default:
		bad("unknown predictor.legacy %q", c.Predictor.Legacy)
	}

	switch c.Log.Format {
	case "", "json", "console":
	default:
		bad("unknown log.format %q", c.Log.Format)
	}

	return errors.Join(errs...)
}

// APIKey returns the LLM key from the configured environment variable.
func (c LLMConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}
