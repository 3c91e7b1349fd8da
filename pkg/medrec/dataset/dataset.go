// Package dataset reads the medical CSV exports into vocabulary records and
// care advice.
//
// File layouts (first row is a header and is skipped):
//
//	symtoms_df.csv      index, Disease, Symptom_1, Symptom_2, ...
//	description.csv     Disease, Description
//	medications.csv     Disease, Medication      (Python list literal)
//	diets.csv           Disease, Diet            (Python list literal)
//	precautions_df.csv  index, Disease, Precaution_1, ...
//	workout_df.csv      index, ?, disease, workout   (one row per workout)
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/medrec/pkg/medrec/careinfo"
	"github.com/cognicore/medrec/pkg/medrec/internalerr"
	"github.com/cognicore/medrec/pkg/medrec/vocab"
)

// File names inside a dataset directory.
const (
	SymptomsFile     = "symtoms_df.csv"
	DescriptionsFile = "description.csv"
	MedicationsFile  = "medications.csv"
	DietsFile        = "diets.csv"
	PrecautionsFile  = "precautions_df.csv"
	WorkoutsFile     = "workout_df.csv"
)

// Files lists every file LoadDir reads.
var Files = []string{SymptomsFile, DescriptionsFile, MedicationsFile, DietsFile, PrecautionsFile, WorkoutsFile}

// Bundle is a fully parsed dataset.
type Bundle struct {
	Records      []vocab.Record
	Descriptions map[string]string
	Medications  map[string][]string
	Diets        map[string][]string
	Precautions  map[string][]string
	Workouts     map[string][]string
}

// NewBundle returns an empty bundle with initialized maps.
func NewBundle() *Bundle {
	return &Bundle{
		Descriptions: make(map[string]string),
		Medications:  make(map[string][]string),
		Diets:        make(map[string][]string),
		Precautions:  make(map[string][]string),
		Workouts:     make(map[string][]string),
	}
}

// Care merges the advice tables into one entry per disease.
func (b *Bundle) Care() map[string]careinfo.Info {
	out := make(map[string]careinfo.Info)
	get := func(d string) careinfo.Info { return out[d] }

	for d, v := range b.Descriptions {
		i := get(d)
		i.Description = v
		out[d] = i
	}
	for d, v := range b.Precautions {
		i := get(d)
		i.Precautions = v
		out[d] = i
	}
	for d, v := range b.Medications {
		i := get(d)
		i.Medications = v
		out[d] = i
	}
	for d, v := range b.Diets {
		i := get(d)
		i.Diets = v
		out[d] = i
	}
	for d, v := range b.Workouts {
		i := get(d)
		i.Workouts = v
		out[d] = i
	}
	return out
}

// LoadDir reads a dataset directory. The symptoms file is required; missing
// advice files leave their tables empty.
func LoadDir(dir string) (*Bundle, error) {
	b := NewBundle()

	records, err := readFile(filepath.Join(dir, SymptomsFile), ParseSymptoms)
	if err != nil {
		return nil, fmt.Errorf("load symptoms: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("load symptoms: %w", internalerr.ErrEmptyDataset)
	}
	b.Records = records

	if b.Descriptions, err = optional(filepath.Join(dir, DescriptionsFile), ParseDescriptions, b.Descriptions); err != nil {
		return nil, fmt.Errorf("load descriptions: %w", err)
	}
	if b.Medications, err = optional(filepath.Join(dir, MedicationsFile), ParseListColumn, b.Medications); err != nil {
		return nil, fmt.Errorf("load medications: %w", err)
	}
	if b.Diets, err = optional(filepath.Join(dir, DietsFile), ParseListColumn, b.Diets); err != nil {
		return nil, fmt.Errorf("load diets: %w", err)
	}
	if b.Precautions, err = optional(filepath.Join(dir, PrecautionsFile), ParsePrecautions, b.Precautions); err != nil {
		return nil, fmt.Errorf("load precautions: %w", err)
	}
	if b.Workouts, err = optional(filepath.Join(dir, WorkoutsFile), ParseWorkouts, b.Workouts); err != nil {
		return nil, fmt.Errorf("load workouts: %w", err)
	}

	return b, nil
}

func readFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	return parse(f)
}

func optional[T any](path string, parse func(io.Reader) (T, error), fallback T) (T, error) {
	v, err := readFile(path, parse)
	if errors.Is(err, fs.ErrNotExist) {
		return fallback, nil
	}
	return v, err
}

// rows reads all CSV rows after the header.
func rows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	all, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) <= 1 {
		return nil, nil
	}
	return all[1:], nil
}

// ParseSymptoms reads the symptoms table. Rows without a disease or without
// any usable symptom are skipped.
func ParseSymptoms(r io.Reader) ([]vocab.Record, error) {
	all, err := rows(r)
	if err != nil {
		return nil, err
	}

	var out []vocab.Record
	for _, row := range all {
		if len(row) < 2 {
			continue
		}
		disease := strings.TrimSpace(row[1])
		symptoms := cells(row[2:])
		if disease == "" || len(symptoms) == 0 {
			continue
		}
		out = append(out, vocab.Record{Disease: disease, Symptoms: symptoms})
	}
	return out, nil
}

// ParseDescriptions reads disease → description.
func ParseDescriptions(r io.Reader) (map[string]string, error) {
	all, err := rows(r)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for _, row := range all {
		if len(row) < 2 {
			continue
		}
		disease := strings.TrimSpace(row[0])
		desc := strings.TrimSpace(row[1])
		if disease != "" && desc != "" {
			out[disease] = desc
		}
	}
	return out, nil
}

// ParseListColumn reads disease → list where the list is stored as a Python
// list literal in the second column, e.g. "['Antifungal Cream', 'Fluconazole']".
func ParseListColumn(r io.Reader) (map[string][]string, error) {
	all, err := rows(r)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string)
	for _, row := range all {
		if len(row) < 2 {
			continue
		}
		disease := strings.TrimSpace(row[0])
		list := ParseList(row[1])
		if disease != "" && len(list) > 0 {
			out[disease] = list
		}
	}
	return out, nil
}

// ParsePrecautions reads index, disease, precaution columns.
func ParsePrecautions(r io.Reader) (map[string][]string, error) {
	all, err := rows(r)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string)
	for _, row := range all {
		if len(row) < 3 {
			continue
		}
		disease := strings.TrimSpace(row[1])
		list := cells(row[2:])
		if disease != "" && len(list) > 0 {
			out[disease] = list
		}
	}
	return out, nil
}

// ParseWorkouts reads one workout per row, grouped by disease in file order.
func ParseWorkouts(r io.Reader) (map[string][]string, error) {
	all, err := rows(r)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string)
	for _, row := range all {
		if len(row) < 4 {
			continue
		}
		disease := strings.TrimSpace(row[2])
		workout := strings.TrimSpace(row[3])
		if disease == "" || isPlaceholder(workout) {
			continue
		}
		out[disease] = append(out[disease], workout)
	}
	return out, nil
}

// ParseList splits a Python-style list literal into trimmed items.
func ParseList(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	var out []string
	for _, part := range strings.Split(s, ",") {
		item := strings.Trim(strings.TrimSpace(part), `"'`)
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func cells(in []string) []string {
	var out []string
	for _, c := range in {
		c = strings.TrimSpace(c)
		if isPlaceholder(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func isPlaceholder(s string) bool {
	switch strings.ToLower(s) {
	case "", "null", "nan":
		return true
	}
	return false
}
