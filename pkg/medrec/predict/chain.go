package predict

import (
	"strings"

	"github.com/cognicore/medrec/pkg/medrec/vocab"
)

// Tier names reported in Result.Tier for the built-in strategies.
const (
	TierScoring       = "scoring"
	TierVoting        = "voting"
	TierRules         = "rules"
	TierCommonDefault = "common-default"
	TierNone          = "none"
)

// Prediction is a strategy's answer.
type Prediction struct {
	Disease string
	Score   float64 // strategy-specific confidence; zero when not applicable
}

// Strategy proposes a disease for a set of matched symptoms. Implementations
// must be free of side effects and safe for concurrent use.
type Strategy interface {
	Name() string
	Predict(idx *vocab.Index, matched []string) (Prediction, bool)
}

type funcStrategy struct {
	name string
	fn   func(matched []string) (string, bool)
}

// Func adapts a plain function (a legacy or alternate predictor that does not
// need the vocabulary) to a Strategy. A blank disease counts as no answer.
func Func(name string, fn func(matched []string) (string, bool)) Strategy {
	return funcStrategy{name: name, fn: fn}
}

func (f funcStrategy) Name() string { return f.name }

func (f funcStrategy) Predict(_ *vocab.Index, matched []string) (Prediction, bool) {
	if f.fn == nil {
		return Prediction{}, false
	}
	disease, ok := f.fn(matched)
	if !ok || strings.TrimSpace(disease) == "" {
		return Prediction{}, false
	}
	return Prediction{Disease: disease}, true
}

// Name implements Strategy.
func (s *Scorer) Name() string { return TierScoring }

// Predict implements Strategy using Best.
func (s *Scorer) Predict(idx *vocab.Index, matched []string) (Prediction, bool) {
	best, ok := s.Best(idx, matched)
	if !ok {
		return Prediction{}, false
	}
	return Prediction{Disease: best.Disease, Score: best.Score}, true
}

// Result is the outcome of running a Chain.
type Result struct {
	Disease string
	Tier    string
	Score   float64
	OK      bool
}

// Chain evaluates strategies in order until one answers.
type Chain struct {
	strategies []Strategy
}

// NewChain creates a chain. Nil strategies are dropped.
func NewChain(strategies ...Strategy) *Chain {
	c := &Chain{}
	for _, s := range strategies {
		if s != nil {
			c.strategies = append(c.strategies, s)
		}
	}
	return c
}

// Strategies returns the strategy names in evaluation order.
func (c *Chain) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Predict returns the first answer. With no matched symptoms nothing is
// guessed and no strategy runs.
func (c *Chain) Predict(idx *vocab.Index, matched []string) Result {
	if len(matched) == 0 {
		return Result{Tier: TierNone}
	}
	for _, s := range c.strategies {
		p, ok := s.Predict(idx, matched)
		if !ok || strings.TrimSpace(p.Disease) == "" {
			continue
		}
		return Result{Disease: p.Disease, Tier: s.Name(), Score: p.Score, OK: true}
	}
	return Result{Tier: TierNone}
}

// Standard builds the usual three-tier chain: scoring, then legacy (skipped
// when nil), then the common-symptom default.
func Standard(scorer *Scorer, legacy Strategy, common *CommonDefault) *Chain {
	var strategies []Strategy
	if scorer != nil {
		strategies = append(strategies, scorer)
	}
	if legacy != nil {
		strategies = append(strategies, legacy)
	}
	if common != nil {
		strategies = append(strategies, common)
	}
	return NewChain(strategies...)
}
