package normalize

import (
	"sort"
	"strings"
)

// DefaultCorrections maps frequent speech-recognition slips to the word the
// speaker meant.
func DefaultCorrections() map[string]string {
	return map[string]string{
		"feaver":   "fever",
		"fevr":     "fever",
		"couh":     "cough",
		"cugh":     "cough",
		"colt":     "cold",
		"codl":     "cold",
		"headack":  "headache",
		"headace":  "headache",
		"stomac":   "stomach",
		"stomache": "stomach",
		"throte":   "throat",
		"sorn":     "sore",
		"soar":     "sore",
		"paine":    "pain",
		"aching":   "ache",
	}
}

// Corrector rewrites whole words (or whole multi-word phrases) in normalized
// text. Longer phrases win over shorter ones starting at the same token.
type Corrector struct {
	entries []correction
}

type correction struct {
	from []string
	to   string
}

// NewCorrector builds a corrector from a from→to table. Keys and values are
// normalized with Text; entries that normalize to nothing are ignored.
func NewCorrector(table map[string]string) *Corrector {
	c := &Corrector{}
	for from, to := range table {
		nf := Text(from)
		nt := Text(to)
		if nf == "" || nf == nt {
			continue
		}
		c.entries = append(c.entries, correction{from: Tokens(nf), to: nt})
	}

	sort.Slice(c.entries, func(i, j int) bool {
		if len(c.entries[i].from) != len(c.entries[j].from) {
			return len(c.entries[i].from) > len(c.entries[j].from)
		}
		return strings.Join(c.entries[i].from, " ") < strings.Join(c.entries[j].from, " ")
	})

	return c
}

// Len reports the number of active corrections.
func (c *Corrector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Apply rewrites normalized text. A nil or empty corrector returns the input.
func (c *Corrector) Apply(normalized string) string {
	if c.Len() == 0 || normalized == "" {
		return normalized
	}

	tokens := Tokens(normalized)
	out := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); {
		replaced := false
		for _, e := range c.entries {
			if !hasPrefix(tokens[i:], e.from) {
				continue
			}
			if e.to != "" {
				out = append(out, e.to)
			}
			i += len(e.from)
			replaced = true
			break
		}
		if !replaced {
			out = append(out, tokens[i])
			i++
		}
	}

	return strings.Join(out, " ")
}

func hasPrefix(tokens, prefix []string) bool {
	if len(prefix) > len(tokens) {
		return false
	}
	for i := range prefix {
		if tokens[i] != prefix[i] {
			return false
		}
	}
	return true
}
