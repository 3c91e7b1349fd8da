package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/medrec/pkg/medrec/normalize"
	"github.com/cognicore/medrec/pkg/medrec/predict"
	"github.com/cognicore/medrec/pkg/medrec/vocab"
)

// StrategyName is the tier name reported for answers from the model.
const StrategyName = "llm"

const systemPrompt = "You are a triage assistant. Pick the single most likely disease " +
	"for the listed symptoms from the candidate list. Reply with the disease name " +
	"exactly as written in the list, or NONE if no candidate fits."

// Chatter is the part of Client the strategy needs.
type Chatter interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// Strategy asks a language model to choose among the diseases of the current
// vocabulary. Answers outside the vocabulary are discarded, so the model can
// never introduce a disease the dataset does not know.
type Strategy struct {
	chat   Chatter
	logger *zap.Logger
	// MaxCandidates caps the candidate list sent in the prompt.
	MaxCandidates int
}

// NewStrategy wraps c as a prediction strategy.
func NewStrategy(c Chatter, logger *zap.Logger) *Strategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Strategy{chat: c, logger: logger, MaxCandidates: 50}
}

// Name implements predict.Strategy.
func (s *Strategy) Name() string { return StrategyName }

// Predict implements predict.Strategy.
func (s *Strategy) Predict(idx *vocab.Index, matched []string) (predict.Prediction, bool) {
	if len(matched) == 0 || idx.DiseaseCount() == 0 {
		return predict.Prediction{}, false
	}

	candidates := s.candidates(idx, matched)
	ctx := context.Background()
	if c, ok := s.chat.(*Client); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	answer, err := s.chat.Chat(ctx, systemPrompt, formatPrompt(matched, candidates))
	if err != nil {
		s.logger.Warn("llm strategy failed", zap.Error(err))
		return predict.Prediction{}, false
	}

	disease, ok := resolve(answer, candidates)
	if !ok {
		s.logger.Debug("llm answer rejected", zap.String("answer", answer))
		return predict.Prediction{}, false
	}
	return predict.Prediction{Disease: disease}, true
}

// candidates prefers diseases sharing a matched symptom; when none do, every
// known disease is offered.
func (s *Strategy) candidates(idx *vocab.Index, matched []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, sym := range matched {
		for _, d := range idx.DiseasesFor(sym) {
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		out = idx.Diseases()
	}
	if s.MaxCandidates > 0 && len(out) > s.MaxCandidates {
		out = out[:s.MaxCandidates]
	}
	return out
}

func formatPrompt(matched, candidates []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Symptoms: %s\nCandidates:\n", strings.Join(matched, ", "))
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	return b.String()
}

func resolve(answer string, candidates []string) (string, bool) {
	key := normalize.Text(answer)
	if key == "" || key == "none" {
		return "", false
	}
	for _, c := range candidates {
		if normalize.Text(c) == key {
			return c, true
		}
	}
	return "", false
}
