package medrec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/medrec/pkg/medrec/careinfo"
	"github.com/cognicore/medrec/pkg/medrec/dataset"
	"github.com/cognicore/medrec/pkg/medrec/metrics"
	"github.com/cognicore/medrec/pkg/medrec/normalize"
	"github.com/cognicore/medrec/pkg/medrec/predict"
	"github.com/cognicore/medrec/pkg/medrec/specialist"
	"github.com/cognicore/medrec/pkg/medrec/store/memstore"
	"github.com/cognicore/medrec/pkg/medrec/vocab"
)

func clinicRecords() []vocab.Record {
	return []vocab.Record{
		{Disease: "Flu", Symptoms: []string{"fever", "cough", "fatigue"}},
		{Disease: "Common Cold", Symptoms: []string{"cough", "sneezing"}},
		{Disease: "Fungal infection", Symptoms: []string{"itching", "skin_rash"}},
	}
}

func TestRecommendScoring(t *testing.T) {
	m := New(Options{Records: clinicRecords()})

	rec := m.Recommend("I have a feverr and coughh")
	if !reflect.DeepEqual(rec.Symptoms, []string{"fever", "cough"}) {
		t.Fatalf("symptoms = %v", rec.Symptoms)
	}
	if !rec.Found || rec.Disease != "Flu" || rec.Tier != predict.TierScoring {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
	if rec.Score < 0.83 || rec.Score > 0.84 {
		t.Errorf("score = %v, want ~0.8333", rec.Score)
	}
	if rec.Specialist != string(specialist.Default) {
		t.Errorf("specialist = %q", rec.Specialist)
	}
	if rec.Advice == nil || rec.Advice.Description != careinfo.DescriptionUnavailable {
		t.Errorf("expected placeholder advice, got %+v", rec.Advice)
	}
	if _, err := ulid.ParseStrict(rec.ID); err != nil {
		t.Errorf("id %q is not a ULID: %v", rec.ID, err)
	}
	if rec.Dataset != fmt.Sprintf("%016x", m.Index().Fingerprint()) {
		t.Errorf("dataset fingerprint = %q", rec.Dataset)
	}
}

func TestRecommendSpecialist(t *testing.T) {
	m := New(Options{Records: clinicRecords()})

	rec := m.Recommend("itching")
	if rec.Disease != "Fungal infection" {
		t.Fatalf("disease = %q", rec.Disease)
	}
	if rec.Specialist != string(specialist.Dermatologist) {
		t.Fatalf("specialist = %q", rec.Specialist)
	}
}

func TestRecommendNothingMatched(t *testing.T) {
	m := New(Options{Records: clinicRecords()})

	rec := m.Recommend("rash")
	if rec.Found || rec.Disease != "" || rec.Tier != predict.TierNone {
		t.Fatalf("expected absent recommendation, got %+v", rec)
	}
	if len(rec.Symptoms) != 0 {
		t.Fatalf("expected no symptoms, got %v", rec.Symptoms)
	}
	if rec.Advice != nil || rec.Specialist != "" {
		t.Fatalf("absent recommendation should carry no advice")
	}
}

func TestRecommendEmptyInput(t *testing.T) {
	m := New(Options{Records: clinicRecords()})
	for _, in := range []string{"", "   ", "!!!"} {
		if rec := m.Recommend(in); rec.Found {
			t.Errorf("Recommend(%q) guessed %q", in, rec.Disease)
		}
	}
}

func TestRecommendCommonDefault(t *testing.T) {
	m := New(Options{
		Records: clinicRecords(),
		Scoring: predict.Config{Weights: predict.Weights{Disease: 0.5, Input: 0.5}, MinScore: 0.99},
	})

	rec := m.Recommend("fever")
	if rec.Disease != "Common Cold" || rec.Tier != predict.TierCommonDefault {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
	if rec.Advice == nil || rec.Advice.Description == careinfo.DescriptionUnavailable {
		t.Fatalf("expected built-in advice for Common Cold")
	}
}

// csvShapedRecords use the underscore-joined names found in the shipped CSVs.
func csvShapedRecords() []vocab.Record {
	return []vocab.Record{
		{Disease: "Malaria", Symptoms: []string{"chills", "vomiting", "high_fever", "sweating", "headache", "nausea", "muscle_pain"}},
		{Disease: "Allergy", Symptoms: []string{"continuous_sneezing", "shivering", "chills", "watering_from_eyes"}},
		{Disease: "Fungal infection", Symptoms: []string{"itching", "skin_rash", "nodal_skin_eruptions"}},
	}
}

func TestRecommendEverydayWordsOnDatasetVocabulary(t *testing.T) {
	m := New(Options{Records: csvShapedRecords()})

	tests := []struct {
		in   string
		want []string
	}{
		{"fever", []string{"high_fever"}},
		{"feaver", []string{"high_fever"}},
		{"cold", []string{"chills"}},
		{"sneezing", []string{"continuous_sneezing"}},
		{"skin rash", []string{"skin_rash"}},
	}
	for _, tt := range tests {
		if got := m.Symptoms(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Symptoms(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	rec := m.Recommend("sneezing")
	if rec.Disease != "Allergy" || rec.Tier != predict.TierScoring {
		t.Errorf("sneezing: %+v", rec)
	}
}

func TestRecommendCommonDefaultOnDatasetVocabulary(t *testing.T) {
	m := New(Options{
		Records: csvShapedRecords(),
		Scoring: predict.Config{Weights: predict.Weights{Disease: 0.5, Input: 0.5}, MinScore: 0.99},
	})

	rec := m.Recommend("fever")
	if rec.Disease != "Common Cold" || rec.Tier != predict.TierCommonDefault {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
}

func TestRecommendLegacyTier(t *testing.T) {
	m := New(Options{
		Records: clinicRecords(),
		Scoring: predict.Config{Weights: predict.Weights{Disease: 0.5, Input: 0.5}, MinScore: 0.99},
		Legacy:  predict.Voting{},
	})

	rec := m.Recommend("sneezing")
	if rec.Disease != "Common Cold" || rec.Tier != TierLegacyPrefix+predict.TierVoting {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
	want := []string{predict.TierScoring, predict.TierVoting, predict.TierCommonDefault}
	if got := m.Strategies(); !reflect.DeepEqual(got, want) {
		t.Fatalf("strategies = %v, want %v", got, want)
	}
}

func TestCommaSplitRetry(t *testing.T) {
	m := New(Options{Records: clinicRecords()})
	if got := m.Symptoms("fivar, coofh"); !reflect.DeepEqual(got, []string{"fever", "cough"}) {
		t.Fatalf("retry symptoms = %v", got)
	}

	off := New(Options{Records: clinicRecords(), RetryThreshold: -1})
	if got := off.Symptoms("fivar, coofh"); len(got) != 0 {
		t.Fatalf("retry disabled but matched %v", got)
	}
}

func TestCorrectionsApplied(t *testing.T) {
	m := New(Options{
		Records:   clinicRecords(),
		Corrector: normalize.NewCorrector(map[string]string{"high temperature": "fever"}),
	})
	if got := m.Symptoms("High temperature!"); !reflect.DeepEqual(got, []string{"fever"}) {
		t.Fatalf("symptoms = %v", got)
	}
}

func TestReloadSwapsVocabulary(t *testing.T) {
	mt := metrics.New(false)
	m := New(Options{Records: clinicRecords(), Metrics: mt})
	before := m.Index().Fingerprint()

	idx := m.Reload([]vocab.Record{{Disease: "Migraine", Symptoms: []string{"headache"}}})
	if idx.Fingerprint() == before {
		t.Fatal("fingerprint should change after reload")
	}
	if m.Index() != idx {
		t.Fatal("reloaded index not published")
	}
	if rec := m.Recommend("fever"); rec.Found {
		t.Fatalf("old vocabulary still answering: %+v", rec)
	}
	if rec := m.Recommend("headache"); rec.Disease != "Migraine" {
		t.Fatalf("new vocabulary not used: %+v", rec)
	}
}

func TestReloadDirUpdatesCatalog(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		dataset.SymptomsFile:     ",Disease,Symptom_1,Symptom_2\n0,Migraine,headache,nausea\n",
		dataset.DescriptionsFile: "Disease,Description\nMigraine,Recurring headaches.\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m := New(Options{Records: clinicRecords()})
	if err := m.ReloadDir(context.Background(), dir); err != nil {
		t.Fatalf("ReloadDir: %v", err)
	}
	rec := m.Recommend("headache")
	if rec.Disease != "Migraine" || rec.Advice == nil || rec.Advice.Description != "Recurring headaches." {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
	if rec.Specialist != string(specialist.Neurologist) {
		t.Fatalf("specialist = %q", rec.Specialist)
	}
}

func TestReloadDirFailureKeepsSnapshot(t *testing.T) {
	m := New(Options{Records: clinicRecords()})
	before := m.Index()

	if err := m.ReloadDir(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if m.Index() != before {
		t.Fatal("failed reload replaced the snapshot")
	}
}

func TestReloadStoreAndHistory(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	b := dataset.NewBundle()
	b.Records = []vocab.Record{{Disease: "Sinusitis", Symptoms: []string{"congestion", "headache"}}}
	if err := st.ReplaceDataset(ctx, b); err != nil {
		t.Fatalf("ReplaceDataset: %v", err)
	}

	m := New(Options{})
	if err := m.ReloadStore(ctx, st); err != nil {
		t.Fatalf("ReloadStore: %v", err)
	}

	rec := m.Recommend("congestion")
	if rec.Disease != "Sinusitis" {
		t.Fatalf("disease = %q", rec.Disease)
	}
	if err := st.AppendHistory(ctx, rec.History()); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	hist, err := st.History(ctx, 5)
	if err != nil || len(hist) != 1 || hist[0].ID != rec.ID {
		t.Fatalf("history = %+v, %v", hist, err)
	}
}

func TestSharedHolder(t *testing.T) {
	h := vocab.NewHolder(vocab.Build(clinicRecords()))
	m := New(Options{Holder: h})

	h.Rebuild([]vocab.Record{{Disease: "Acne", Symptoms: []string{"pimples"}}})
	if rec := m.Recommend("pimples"); rec.Disease != "Acne" {
		t.Fatalf("facade did not see holder update: %+v", rec)
	}
}

func TestConcurrentRecommendDuringReload(t *testing.T) {
	m := New(Options{Records: clinicRecords()})
	a := m.Index().Fingerprint()
	next := []vocab.Record{{Disease: "Flu", Symptoms: []string{"fever", "chills"}}}
	b := vocab.Build(next).Fingerprint()

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				rec := m.Recommend("fever")
				if rec.Dataset != fmt.Sprintf("%016x", a) && rec.Dataset != fmt.Sprintf("%016x", b) {
					errs <- rec.Dataset
					return
				}
				if rec.Disease != "Flu" {
					errs <- "disease " + rec.Disease
					return
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			m.Reload(next)
		} else {
			m.Reload(clinicRecords())
		}
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("inconsistent snapshot: %s", e)
	}
}

func TestUniqueIDs(t *testing.T) {
	m := New(Options{Records: clinicRecords()})
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := m.Recommend("fever").ID
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
