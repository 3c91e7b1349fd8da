// Package match maps raw utterances to canonical symptoms from a vocabulary
// index using exact phrase hits and per-token fuzzy matching.
package match

import (
	"sort"
	"strings"

	"github.com/cognicore/medrec/pkg/medrec/normalize"
	"github.com/cognicore/medrec/pkg/medrec/similarity"
	"github.com/cognicore/medrec/pkg/medrec/vocab"
)

// DefaultThreshold is the minimum similarity for a token to match a symptom.
const DefaultThreshold = 0.7

// DefaultMaxPhraseLen bounds n-gram phrase recognition.
const DefaultMaxPhraseLen = 4

// DefaultMappings sends everyday words to the dataset symptom they stand for.
// A mapping applies only when its target is in the vocabulary.
func DefaultMappings() map[string]string {
	return map[string]string{
		"fever":     "high_fever",
		"cold":      "chills",
		"head ache": "headache",
		"head-ache": "headache",
		"coughing":  "cough",
		"sneezing":  "continuous_sneezing",
	}
}

// IndexSource yields the vocabulary snapshot to match against.
// *vocab.Holder satisfies it.
type IndexSource interface {
	Load() *vocab.Index
}

// Options configures a Matcher.
type Options struct {
	// Threshold used by Match. Zero means DefaultThreshold.
	Threshold float64
	// Normalize cleans raw input. Nil means normalize.Text.
	Normalize normalize.Func
	// Phrases enables greedy n-gram recognition (longest first, down to two
	// words) of exact multi-word symptoms before per-token fuzzy matching.
	Phrases bool
	// MaxPhraseLen is the longest n-gram tried. Zero means DefaultMaxPhraseLen.
	MaxPhraseLen int
	// Mappings are checked against the whole input and each token before
	// fuzzy matching. Nil means DefaultMappings; an empty map disables them.
	Mappings map[string]string
}

// Matcher finds known symptoms in free text. It is safe for concurrent use.
type Matcher struct {
	src          IndexSource
	threshold    float64
	normalize    normalize.Func
	phrases      bool
	maxPhraseLen int
	mappings     map[string]string
}

// New creates a matcher reading its vocabulary from src.
func New(src IndexSource, opts Options) *Matcher {
	m := &Matcher{
		src:          src,
		threshold:    opts.Threshold,
		normalize:    opts.Normalize,
		phrases:      opts.Phrases,
		maxPhraseLen: opts.MaxPhraseLen,
	}
	if m.threshold <= 0 {
		m.threshold = DefaultThreshold
	}
	if m.normalize == nil {
		m.normalize = normalize.Text
	}
	if m.maxPhraseLen < 2 {
		m.maxPhraseLen = DefaultMaxPhraseLen
	}

	table := opts.Mappings
	if table == nil {
		table = DefaultMappings()
	}
	m.mappings = make(map[string]string, len(table))
	for from, to := range table {
		key := m.normalize(from)
		target := vocab.NormalizeSymptom(to)
		if key != "" && target != "" {
			m.mappings[key] = target
		}
	}
	return m
}

// Threshold returns the default similarity threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match matches input against the current vocabulary at the default threshold.
func (m *Matcher) Match(input string) []string {
	return m.MatchIn(m.index(), input, m.threshold)
}

// MatchAt matches input against the current vocabulary at threshold.
func (m *Matcher) MatchAt(input string, threshold float64) []string {
	return m.MatchIn(m.index(), input, threshold)
}

// MatchIn matches input against idx. The result holds each symptom once, in
// first-found order: the whole-input hit (if any) first, then hits in token
// order. Phrases match a symptom or its spoken form, so "skin rash" finds
// skin_rash. It never returns an error; no match yields an empty slice.
func (m *Matcher) MatchIn(idx *vocab.Index, input string, threshold float64) []string {
	matched := []string{}
	if input == "" || idx.Len() == 0 {
		return matched
	}

	normalized := m.normalize(input)
	if normalized == "" {
		return matched
	}

	seen := make(map[string]struct{})
	add := func(symptom string) {
		if _, dup := seen[symptom]; dup {
			return
		}
		seen[symptom] = struct{}{}
		matched = append(matched, symptom)
	}

	if symptom, ok := m.mapped(idx, normalized); ok {
		add(symptom)
	} else if symptom, ok := idx.Resolve(normalized); ok {
		add(symptom)
	}

	tokens := normalize.Tokens(normalized)
	for i := 0; i < len(tokens); {
		if m.phrases {
			if n, phrase := m.longestPhrase(idx, tokens[i:]); n > 0 {
				add(phrase)
				i += n
				continue
			}
		}

		if symptom, ok := m.mapped(idx, tokens[i]); ok {
			add(symptom)
			i++
			continue
		}

		if best, _, ok := Best(idx, tokens[i], threshold); ok {
			add(best)
		}
		i++
	}

	return matched
}

func (m *Matcher) longestPhrase(idx *vocab.Index, tokens []string) (int, string) {
	n := m.maxPhraseLen
	if n > len(tokens) {
		n = len(tokens)
	}
	for ; n >= 2; n-- {
		if symptom, ok := idx.Resolve(strings.Join(tokens[:n], " ")); ok {
			return n, symptom
		}
	}
	return 0, ""
}

func (m *Matcher) mapped(idx *vocab.Index, text string) (string, bool) {
	target, ok := m.mappings[text]
	if !ok {
		return "", false
	}
	return idx.Resolve(target)
}

func (m *Matcher) index() *vocab.Index {
	if m.src == nil {
		return nil
	}
	return m.src.Load()
}

// Best scans every known symptom of idx in lexicographic order and returns the
// highest-scoring one with similarity >= threshold. On equal scores the
// lexicographically first symptom wins.
func Best(idx *vocab.Index, token string, threshold float64) (string, float64, bool) {
	var (
		best      string
		bestScore float64
		found     bool
	)
	for _, symptom := range idx.Symptoms() {
		score := similarity.Similarity(token, symptom)
		if score >= threshold && score > bestScore {
			best = symptom
			bestScore = score
			found = true
		}
	}
	return best, bestScore, found
}

// Candidate is a symptom scored against a token.
type Candidate struct {
	Symptom string
	Score   float64
}

// Suggest returns up to limit known symptoms scoring >= threshold against
// token, best first, ties in lexicographic order.
func Suggest(idx *vocab.Index, token string, threshold float64, limit int) []Candidate {
	var out []Candidate
	for _, symptom := range idx.Symptoms() {
		score := similarity.Similarity(token, symptom)
		if score >= threshold {
			out = append(out, Candidate{Symptom: symptom, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
