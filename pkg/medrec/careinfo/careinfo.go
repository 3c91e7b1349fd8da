// Package careinfo serves the care advice attached to a diagnosis:
// description, precautions, medications, diets and workouts.
package careinfo

import (
	"sort"

	"github.com/cognicore/medrec/pkg/medrec/normalize"
)

// Info is the advice for one disease.
type Info struct {
	Description string   `json:"description"`
	Precautions []string `json:"precautions"`
	Medications []string `json:"medications"`
	Diets       []string `json:"diets"`
	Workouts    []string `json:"workouts"`
}

// DescriptionUnavailable is used when a disease has no description.
const DescriptionUnavailable = "Description not available"

// Empty reports whether info carries no advice at all.
func (i Info) Empty() bool {
	return i.Description == "" && len(i.Precautions) == 0 && len(i.Medications) == 0 &&
		len(i.Diets) == 0 && len(i.Workouts) == 0
}

// Catalog looks up advice by disease name. Lookups ignore case, spacing and
// punctuation, and resolve known aliases. A Catalog is immutable.
type Catalog struct {
	entries map[string]Info
	names   map[string]string // key -> display name
	aliases map[string]string // key -> target key
}

// NewCatalog builds a catalog from dataset entries. Built-in entries fill
// diseases the dataset does not describe; dataset entries win otherwise.
func NewCatalog(entries map[string]Info, aliases map[string]string) *Catalog {
	c := &Catalog{
		entries: make(map[string]Info),
		names:   make(map[string]string),
		aliases: make(map[string]string),
	}

	for name, info := range Builtin() {
		c.put(name, info)
	}
	for name, info := range entries {
		c.put(name, info)
	}

	for from, to := range DefaultAliases() {
		c.alias(from, to)
	}
	for from, to := range aliases {
		c.alias(from, to)
	}

	return c
}

func (c *Catalog) put(name string, info Info) {
	key := normalize.Text(name)
	if key == "" {
		return
	}
	c.entries[key] = info
	c.names[key] = name
}

func (c *Catalog) alias(from, to string) {
	kf, kt := normalize.Text(from), normalize.Text(to)
	if kf == "" || kt == "" || kf == kt {
		return
	}
	c.aliases[kf] = kt
}

// Lookup returns advice for disease. Aliases are followed once; a direct
// entry takes precedence over an alias of the same name.
func (c *Catalog) Lookup(disease string) (Info, bool) {
	if c == nil {
		return Info{}, false
	}
	key := normalize.Text(disease)
	if info, ok := c.entries[key]; ok {
		return info, true
	}
	if target, ok := c.aliases[key]; ok {
		info, found := c.entries[target]
		return info, found
	}
	return Info{}, false
}

// Advice is Lookup with the missing-description placeholder filled in.
func (c *Catalog) Advice(disease string) Info {
	info, _ := c.Lookup(disease)
	if info.Description == "" {
		info.Description = DescriptionUnavailable
	}
	return info
}

// Diseases lists the display names of all catalog entries, sorted.
func (c *Catalog) Diseases() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len reports the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
