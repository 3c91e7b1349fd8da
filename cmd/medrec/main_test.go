package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"symtoms_df.csv": ",Disease,Symptom_1,Symptom_2,Symptom_3\n" +
			"0,Flu,fever,cough,fatigue\n" +
			"1,Common Cold,cough,sneezing,\n" +
			"2,Fungal infection,itching,skin_rash,\n",
		"description.csv": "Disease,Description\nFungal infection,A skin infection caused by fungi.\n",
		"precautions_df.csv": ",Disease,Precaution_1,Precaution_2\n0,Fungal infection,bath twice,keep area dry\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestPredictOneShot(t *testing.T) {
	dir := writeDataset(t)
	out, err := run(t, "", "--dataset", dir, "predict", "i", "have", "itching")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	for _, want := range []string{
		"Symptoms:    itching",
		"Disease:     Fungal infection (scoring, score 0.75)",
		"Specialist:  Dermatologist",
		"Description: A skin infection caused by fungi.",
		"  - keep area dry",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPredictNothingRecognized(t *testing.T) {
	dir := writeDataset(t)
	out, err := run(t, "", "--dataset", dir, "predict", "rash")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !strings.Contains(out, "No known symptoms recognized.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestPredictJSON(t *testing.T) {
	dir := writeDataset(t)
	out, err := run(t, "", "--dataset", dir, "predict", "--json", "feverr and coughh")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !strings.Contains(out, `"disease": "Flu"`) || !strings.Contains(out, `"tier": "scoring"`) {
		t.Fatalf("unexpected JSON:\n%s", out)
	}
}

func TestPredictInteractive(t *testing.T) {
	dir := writeDataset(t)
	out, err := run(t, "itching\n\nsneezing\nexit\nfever\n", "--dataset", dir, "predict")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !strings.Contains(out, "Fungal infection") || !strings.Contains(out, "Common Cold") {
		t.Fatalf("missing answers:\n%s", out)
	}
	if strings.Contains(out, "Disease:     Flu") {
		t.Fatalf("input after exit was processed:\n%s", out)
	}
}

func TestImportVocabAndHistory(t *testing.T) {
	dir := writeDataset(t)
	db := filepath.Join(t.TempDir(), "medrec.db")

	out, err := run(t, "", "--db", db, "import", dir)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "imported 3 records (6 symptoms, 3 diseases, 1 with advice)") {
		t.Fatalf("unexpected import output: %s", out)
	}

	// The CSV directory is gone from the flags; everything comes from the database.
	out, err = run(t, "", "--db", db, "--dataset", "", "vocab", "--symptom", "cough")
	if err != nil {
		t.Fatalf("vocab: %v", err)
	}
	if out != "Common Cold\nFlu\n" {
		t.Fatalf("vocab --symptom cough = %q", out)
	}

	if _, err := run(t, "", "--db", db, "--dataset", "", "predict", "itching"); err != nil {
		t.Fatalf("predict: %v", err)
	}
	out, err = run(t, "", "--db", db, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "Fungal infection") || !strings.Contains(out, `"itching"`) {
		t.Fatalf("unexpected history: %s", out)
	}
}

func TestVocabListings(t *testing.T) {
	dir := writeDataset(t)

	out, err := run(t, "", "--dataset", dir, "vocab", "--disease", "Flu")
	if err != nil {
		t.Fatalf("vocab: %v", err)
	}
	if out != "cough\nfatigue\nfever\n" {
		t.Fatalf("vocab --disease = %q", out)
	}

	out, err = run(t, "", "--dataset", dir, "vocab", "--suggest", "fevr")
	if err != nil {
		t.Fatalf("vocab: %v", err)
	}
	if !strings.HasPrefix(out, "fever") {
		t.Fatalf("vocab --suggest = %q", out)
	}

	if _, err := run(t, "", "--dataset", dir, "vocab", "--symptom", "rash"); err == nil {
		t.Fatal("expected error for unknown symptom")
	}
}

func TestImportRequiresDatabase(t *testing.T) {
	if _, err := run(t, "", "import", writeDataset(t)); err == nil {
		t.Fatal("expected error without --db")
	}
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medrec.yaml")
	if err := os.WriteFile(path, []byte("matcher:\n  threshold: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "", "--config", path, "vocab"); err == nil {
		t.Fatal("expected validation error")
	}
}
