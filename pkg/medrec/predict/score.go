// Package predict scores candidate diseases against matched symptoms and
// resolves a final answer through an ordered chain of strategies.
package predict

import (
	"sort"

	"github.com/cognicore/medrec/pkg/medrec/vocab"
)

// Weights balance the two coverage directions of the combined score.
type Weights struct {
	Disease float64 // weight of match_count / |S(D)|
	Input   float64 // weight of match_count / |matched|
}

// Config configures a Scorer.
type Config struct {
	Weights Weights
	// MinScore is exclusive: a best score must be strictly greater to be
	// accepted.
	MinScore float64
}

// DefaultConfig returns equal weights and a 0.1 acceptance floor.
func DefaultConfig() Config {
	return Config{
		Weights:  Weights{Disease: 0.5, Input: 0.5},
		MinScore: 0.1,
	}
}

// DiseaseScore is the per-call score of one disease.
type DiseaseScore struct {
	Disease         string
	Score           float64
	Matches         int
	DiseaseCoverage float64
	InputCoverage   float64
}

// Scorer ranks diseases by how well they explain a set of matched symptoms.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Config returns the scorer configuration.
func (s *Scorer) Config() Config {
	return s.cfg
}

// Scores returns a score for every disease with a non-empty symptom set,
// sorted by score descending and disease name ascending.
func (s *Scorer) Scores(idx *vocab.Index, matched []string) []DiseaseScore {
	input := uniqueSymptoms(matched)
	if len(input) == 0 || idx.DiseaseCount() == 0 {
		return nil
	}

	out := make([]DiseaseScore, 0, idx.DiseaseCount())
	for _, disease := range idx.Diseases() {
		if ds, ok := s.score(idx, disease, input); ok {
			out = append(out, ds)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Best returns the highest-scoring disease. Among equal maxima the
// lexicographically first disease wins. ok is false when nothing was matched,
// the index has no diseases, or the best score does not exceed MinScore.
func (s *Scorer) Best(idx *vocab.Index, matched []string) (DiseaseScore, bool) {
	input := uniqueSymptoms(matched)
	if len(input) == 0 || idx.DiseaseCount() == 0 {
		return DiseaseScore{}, false
	}

	var (
		best  DiseaseScore
		found bool
	)
	for _, disease := range idx.Diseases() {
		ds, ok := s.score(idx, disease, input)
		if !ok {
			continue
		}
		if !found || ds.Score > best.Score {
			best = ds
			found = true
		}
	}

	if !found || best.Score <= s.cfg.MinScore {
		return DiseaseScore{}, false
	}
	return best, true
}

func (s *Scorer) score(idx *vocab.Index, disease string, input []string) (DiseaseScore, bool) {
	size := idx.SymptomCount(disease)
	if size == 0 {
		return DiseaseScore{}, false
	}

	count := 0
	for _, sym := range input {
		if idx.HasSymptom(disease, sym) {
			count++
		}
	}

	ds := DiseaseScore{
		Disease:         disease,
		Matches:         count,
		DiseaseCoverage: float64(count) / float64(size),
		InputCoverage:   float64(count) / float64(len(input)),
	}
	ds.Score = s.cfg.Weights.Disease*ds.DiseaseCoverage + s.cfg.Weights.Input*ds.InputCoverage
	return ds, true
}

func uniqueSymptoms(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		sym := vocab.NormalizeSymptom(raw)
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}
