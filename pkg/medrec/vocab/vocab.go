// Package vocab holds the symptom vocabulary and the symptom↔disease
// associations the matcher and predictor work from.
//
// An Index is immutable once built. Reloading a dataset builds a fresh Index
// and publishes it through a Holder; readers never see a half-built table.
package vocab

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/cognicore/medrec/pkg/medrec/normalize"
)

// Record is one ingested row: a disease and the symptoms listed for it.
// The same disease may appear in several records; their symptoms are merged.
type Record struct {
	Disease  string
	Symptoms []string
}

// Index is the matchable symptom universe plus both association directions.
type Index struct {
	known             map[string]struct{}
	symptoms          []string // lexicographic; the canonical enumeration order
	diseases          []string // lexicographic
	symptomToDiseases map[string]map[string]struct{}
	diseaseToSymptoms map[string]map[string]struct{}
	spoken            map[string]string // "skin rash" -> "skin_rash"
	fingerprint       uint64
}

// NormalizeSymptom lowercases and trims a dataset symptom. It returns "" for
// blanks and for the literal "null" placeholder left by spreadsheet exports.
func NormalizeSymptom(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "null" || s == "nan" {
		return ""
	}
	return s
}

// Build constructs an Index from records. Records with a blank disease and
// symptoms that normalize to "" are skipped.
func Build(records []Record) *Index {
	idx := &Index{
		known:             make(map[string]struct{}),
		symptomToDiseases: make(map[string]map[string]struct{}),
		diseaseToSymptoms: make(map[string]map[string]struct{}),
		spoken:            make(map[string]string),
	}

	for _, rec := range records {
		disease := strings.TrimSpace(rec.Disease)
		if disease == "" {
			continue
		}
		for _, raw := range rec.Symptoms {
			symptom := NormalizeSymptom(raw)
			if symptom == "" {
				continue
			}
			idx.known[symptom] = struct{}{}
			addTo(idx.symptomToDiseases, symptom, disease)
			addTo(idx.diseaseToSymptoms, disease, symptom)
		}
	}

	idx.symptoms = sortedKeys(idx.known)
	for _, symptom := range idx.symptoms {
		form := Spoken(symptom)
		if _, taken := idx.spoken[form]; form != "" && !taken {
			idx.spoken[form] = symptom
		}
	}
	idx.diseases = make([]string, 0, len(idx.diseaseToSymptoms))
	for d := range idx.diseaseToSymptoms {
		idx.diseases = append(idx.diseases, d)
	}
	sort.Strings(idx.diseases)
	idx.fingerprint = idx.computeFingerprint()

	return idx
}

// Empty returns an index with no symptoms and no diseases.
func Empty() *Index {
	return Build(nil)
}

// Len reports the number of known symptoms.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.symptoms)
}

// DiseaseCount reports the number of diseases with at least one symptom.
func (idx *Index) DiseaseCount() int {
	if idx == nil {
		return 0
	}
	return len(idx.diseases)
}

// Known reports whether symptom is in the vocabulary. The argument must
// already be normalized.
func (idx *Index) Known(symptom string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.known[symptom]
	return ok
}

// Spoken returns the form a dataset symptom takes after input normalization:
// underscores become spaces, so "skin_rash" is spoken as "skin rash".
func Spoken(symptom string) string {
	return normalize.Text(strings.ReplaceAll(symptom, "_", " "))
}

// Resolve maps normalized text to a known symptom. It accepts the symptom
// itself or its spoken form; when two symptoms share a spoken form the
// lexicographically first one wins.
func (idx *Index) Resolve(text string) (string, bool) {
	if idx == nil || text == "" {
		return "", false
	}
	if _, ok := idx.known[text]; ok {
		return text, true
	}
	symptom, ok := idx.spoken[text]
	return symptom, ok
}

// Symptoms returns all known symptoms in lexicographic order. The returned
// slice is shared and must not be modified.
func (idx *Index) Symptoms() []string {
	if idx == nil {
		return nil
	}
	return idx.symptoms
}

// Diseases returns all diseases in lexicographic order. The returned slice is
// shared and must not be modified.
func (idx *Index) Diseases() []string {
	if idx == nil {
		return nil
	}
	return idx.diseases
}

// DiseasesFor returns the diseases that list symptom, sorted.
func (idx *Index) DiseasesFor(symptom string) []string {
	if idx == nil {
		return nil
	}
	return sortedKeys(idx.symptomToDiseases[NormalizeSymptom(symptom)])
}

// SymptomsFor returns the symptoms of disease, sorted.
func (idx *Index) SymptomsFor(disease string) []string {
	if idx == nil {
		return nil
	}
	return sortedKeys(idx.diseaseToSymptoms[strings.TrimSpace(disease)])
}

// HasSymptom reports whether disease lists symptom.
func (idx *Index) HasSymptom(disease, symptom string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.diseaseToSymptoms[disease][symptom]
	return ok
}

// SymptomCount returns |S(disease)|.
func (idx *Index) SymptomCount(disease string) int {
	if idx == nil {
		return 0
	}
	return len(idx.diseaseToSymptoms[disease])
}

// Fingerprint identifies the index contents independent of record order.
func (idx *Index) Fingerprint() uint64 {
	if idx == nil {
		return 0
	}
	return idx.fingerprint
}

func (idx *Index) computeFingerprint() uint64 {
	h := xxhash.New()
	for _, d := range idx.diseases {
		_, _ = h.WriteString(d)
		_, _ = h.WriteString("\x00")
		for _, s := range sortedKeys(idx.diseaseToSymptoms[d]) {
			_, _ = h.WriteString(s)
			_, _ = h.WriteString("\x1f")
		}
		_, _ = h.WriteString("\x1e")
	}
	return h.Sum64()
}

func addTo(m map[string]map[string]struct{}, key, val string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	set[val] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
