package predict

import (
	"sort"
	"strings"

	"github.com/cognicore/medrec/pkg/medrec/vocab"
)

// DefaultCommonSymptoms are complaints common enough that a generic answer is
// better than none. high_fever is the dataset's name for fever.
var DefaultCommonSymptoms = []string{"fever", "high_fever", "headache", "cough", "cold", "flu"}

// DefaultDisease is the generic answer for common symptoms.
const DefaultDisease = "Common Cold"

// CommonDefault answers a fixed disease when any matched symptom is in a
// small common-symptom set (case-insensitive). It never guesses otherwise.
type CommonDefault struct {
	symptoms map[string]struct{}
	disease  string
}

// NewCommonDefault creates the last-resort strategy. An empty disease
// disables it.
func NewCommonDefault(symptoms []string, disease string) *CommonDefault {
	c := &CommonDefault{
		symptoms: make(map[string]struct{}, len(symptoms)),
		disease:  strings.TrimSpace(disease),
	}
	for _, s := range symptoms {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			c.symptoms[s] = struct{}{}
		}
	}
	return c
}

// Name implements Strategy.
func (c *CommonDefault) Name() string { return TierCommonDefault }

// Predict implements Strategy.
func (c *CommonDefault) Predict(_ *vocab.Index, matched []string) (Prediction, bool) {
	if c.disease == "" {
		return Prediction{}, false
	}
	for _, m := range matched {
		if _, ok := c.symptoms[strings.ToLower(strings.TrimSpace(m))]; ok {
			return Prediction{Disease: c.disease}, true
		}
	}
	return Prediction{}, false
}

// Voting lets every matched symptom vote for each disease that lists it.
// The disease with most votes wins; ties go to the lexicographically first.
// Score is the winner's share of matched symptoms.
type Voting struct{}

// Name implements Strategy.
func (Voting) Name() string { return TierVoting }

// Predict implements Strategy.
func (Voting) Predict(idx *vocab.Index, matched []string) (Prediction, bool) {
	input := uniqueSymptoms(matched)
	if len(input) == 0 {
		return Prediction{}, false
	}

	votes := make(map[string]int)
	for _, sym := range input {
		for _, d := range idx.DiseasesFor(sym) {
			votes[d]++
		}
	}
	if len(votes) == 0 {
		return Prediction{}, false
	}

	diseases := make([]string, 0, len(votes))
	for d := range votes {
		diseases = append(diseases, d)
	}
	sort.Strings(diseases)

	best := diseases[0]
	for _, d := range diseases[1:] {
		if votes[d] > votes[best] {
			best = d
		}
	}
	return Prediction{Disease: best, Score: float64(votes[best]) / float64(len(input))}, true
}
