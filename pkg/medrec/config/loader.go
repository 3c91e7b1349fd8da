package config

import (
	"fmt"

	"github.com/cognicore/medrec/pkg/medrec/match"
	"github.com/cognicore/medrec/pkg/medrec/normalize"
	"github.com/cognicore/medrec/pkg/medrec/predict"
)

// Components holds the pieces a Config describes.
type Components struct {
	Match          match.Options
	RetryThreshold float64
	Corrector      *normalize.Corrector
	Scorer         *predict.Scorer
	// Legacy is nil for "none" and for "llm", which the caller wires itself.
	Legacy  predict.Strategy
	Common  *predict.CommonDefault
	Aliases map[string]string
}

// Build constructs the matcher and predictor components for cfg.
func Build(cfg Config) (*Components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	comp := &Components{
		Match: match.Options{
			Threshold: cfg.Matcher.Threshold,
			Normalize: normalize.Text,
			Phrases:   cfg.Matcher.Phrases,
			Mappings:  cfg.Matcher.Mappings,
		},
		RetryThreshold: cfg.Matcher.RetryThreshold,
		Corrector:      normalize.NewCorrector(cfg.Matcher.Corrections),
		Scorer: predict.NewScorer(predict.Config{
			Weights: predict.Weights{
				Disease: cfg.Predictor.DiseaseWeight,
				Input:   cfg.Predictor.InputWeight,
			},
			MinScore: cfg.Predictor.MinScore,
		}),
		Common:  predict.NewCommonDefault(cfg.Predictor.CommonSymptoms, cfg.Predictor.DefaultDisease),
		Aliases: cfg.Advice.Aliases,
	}
	if cfg.Matcher.FoldAccents {
		comp.Match.Normalize = normalize.Folded
	}

	switch cfg.Predictor.Legacy {
	case LegacyVoting, "":
		comp.Legacy = predict.Voting{}
	case LegacyRules:
		rules, err := predict.LoadRules(cfg.Predictor.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		comp.Legacy = rules
	}

	return comp, nil
}
