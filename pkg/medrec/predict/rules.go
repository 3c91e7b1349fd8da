package predict

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/medrec/pkg/medrec/vocab"
)

// Rule maps a group of symptoms to a disease.
//
// A rule fires when at least MinPresent of the matched symptoms are in
// Symptoms and, if MaxInput > 0, the input holds no more than MaxInput
// symptoms.
type Rule struct {
	Symptoms   []string `yaml:"symptoms"`
	MinPresent int      `yaml:"min_present"`
	MaxInput   int      `yaml:"max_input"`
	Disease    string   `yaml:"disease"`
}

// Rules evaluates rules in file order; the first rule that fires answers.
type Rules struct {
	rules []compiledRule
}

type compiledRule struct {
	symptoms   map[string]struct{}
	minPresent int
	maxInput   int
	disease    string
}

// DefaultRules mirror the clinic's hand-written triage for the most common
// complaints.
func DefaultRules() []Rule {
	return []Rule{
		{Symptoms: []string{"fever", "high_fever"}, MinPresent: 1, MaxInput: 1, Disease: "Viral Infection"},
		{Symptoms: []string{"cold", "chills"}, MinPresent: 1, MaxInput: 1, Disease: "Common Cold"},
		{Symptoms: []string{"cough"}, MinPresent: 1, MaxInput: 1, Disease: "Viral Respiratory Infection"},
		{Symptoms: []string{"headache"}, MinPresent: 1, MaxInput: 1, Disease: "Sinusitis"},
		{Symptoms: []string{"fever", "high_fever", "cold", "chills", "cough", "headache"}, MinPresent: 2, Disease: "Viral Infection"},
	}
}

// NewRules compiles rules. Rules without a disease or symptoms are rejected.
func NewRules(rules []Rule) (*Rules, error) {
	r := &Rules{}
	for i, rule := range rules {
		disease := strings.TrimSpace(rule.Disease)
		if disease == "" {
			return nil, fmt.Errorf("rule %d: disease required", i+1)
		}
		cr := compiledRule{
			symptoms:   make(map[string]struct{}, len(rule.Symptoms)),
			minPresent: rule.MinPresent,
			maxInput:   rule.MaxInput,
			disease:    disease,
		}
		for _, s := range rule.Symptoms {
			if s = vocab.NormalizeSymptom(s); s != "" {
				cr.symptoms[s] = struct{}{}
			}
		}
		if len(cr.symptoms) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no symptoms", i+1, disease)
		}
		if cr.minPresent < 1 {
			cr.minPresent = 1
		}
		r.rules = append(r.rules, cr)
	}
	return r, nil
}

// LoadRules reads rules from a YAML file of the form
//
//	rules:
//	  - symptoms: [fever, high_fever]
//	    max_input: 1
//	    disease: Viral Infection
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return NewRules(file.Rules)
}

// Len reports the number of rules.
func (r *Rules) Len() int { return len(r.rules) }

// Name implements Strategy.
func (r *Rules) Name() string { return TierRules }

// Predict implements Strategy.
func (r *Rules) Predict(_ *vocab.Index, matched []string) (Prediction, bool) {
	input := uniqueSymptoms(matched)
	if len(input) == 0 {
		return Prediction{}, false
	}
	for _, rule := range r.rules {
		if rule.maxInput > 0 && len(input) > rule.maxInput {
			continue
		}
		present := 0
		for _, sym := range input {
			if _, ok := rule.symptoms[sym]; ok {
				present++
			}
		}
		if present >= rule.minPresent {
			return Prediction{Disease: rule.disease}, true
		}
	}
	return Prediction{}, false
}
