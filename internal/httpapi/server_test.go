package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cognicore/medrec/pkg/medrec"
	"github.com/cognicore/medrec/pkg/medrec/metrics"
	"github.com/cognicore/medrec/pkg/medrec/store/memstore"
	"github.com/cognicore/medrec/pkg/medrec/vocab"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T) (*gin.Engine, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	mt := metrics.New(false)
	m := medrec.New(medrec.Options{
		Records: []vocab.Record{
			{Disease: "Flu", Symptoms: []string{"fever", "cough", "fatigue"}},
			{Disease: "Common Cold", Symptoms: []string{"cough", "sneezing"}},
		},
		Metrics: mt,
	})
	return NewRouter(Options{Medrec: m, Store: st, Metrics: mt}), st
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	r, _ := testRouter(t)
	rec := do(r, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["symptoms"].(float64) != 4 || body["diseases"].(float64) != 2 {
		t.Fatalf("unexpected health body %v", body)
	}
}

func TestHealthEmptyVocabulary(t *testing.T) {
	r := NewRouter(Options{Medrec: medrec.New(medrec.Options{})})
	if rec := do(r, http.MethodGet, "/healthz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPredictJSON(t *testing.T) {
	r, st := testRouter(t)
	rec := do(r, http.MethodPost, "/predict", `{"text":"i have a feverr and coughh"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	var got medrec.Recommendation
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Disease != "Flu" || !got.Found || len(got.Symptoms) != 2 {
		t.Fatalf("unexpected recommendation %+v", got)
	}

	hist, err := st.History(context.Background(), 10)
	if err != nil || len(hist) != 1 || hist[0].ID != got.ID {
		t.Fatalf("history not recorded: %+v %v", hist, err)
	}
}

func TestPredictQueryAbsent(t *testing.T) {
	r, _ := testRouter(t)
	rec := do(r, http.MethodGet, "/predict?q=rash", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got medrec.Recommendation
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Found || got.Tier != "none" {
		t.Fatalf("expected absent recommendation, got %+v", got)
	}
}

func TestPredictBadRequests(t *testing.T) {
	r, _ := testRouter(t)
	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPost, "/predict", `{"text":`},
		{http.MethodPost, "/predict", `{}`},
		{http.MethodGet, "/predict", ""},
		{http.MethodGet, "/history?limit=abc", ""},
	} {
		if rec := do(r, tc.method, tc.path, tc.body); rec.Code != http.StatusBadRequest {
			t.Errorf("%s %s %q: status = %d", tc.method, tc.path, tc.body, rec.Code)
		}
	}
}

func TestVocabularyRoutes(t *testing.T) {
	r, _ := testRouter(t)

	rec := do(r, http.MethodGet, "/symptoms/cough/diseases", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"diseases":["Common Cold","Flu"]`) {
		t.Fatalf("diseasesFor: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(r, http.MethodGet, "/diseases/Flu/symptoms", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"symptoms":["cough","fatigue","fever"]`) {
		t.Fatalf("symptomsFor: %d %s", rec.Code, rec.Body.String())
	}

	if rec = do(r, http.MethodGet, "/symptoms/rash/diseases", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown symptom status = %d", rec.Code)
	}

	rec = do(r, http.MethodGet, "/symptoms", "")
	if !strings.Contains(rec.Body.String(), `"symptoms":["cough","fatigue","fever","sneezing"]`) {
		t.Fatalf("symptoms: %s", rec.Body.String())
	}
}

func TestMetricsRoute(t *testing.T) {
	r, _ := testRouter(t)
	do(r, http.MethodGet, "/predict?q=fever", "")
	rec := do(r, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `medrec_predictions_total{tier="scoring"} 1`) {
		t.Fatalf("metrics: %d %s", rec.Code, rec.Body.String())
	}
}

func TestHistoryDisabledWithoutStore(t *testing.T) {
	r := NewRouter(Options{Medrec: medrec.New(medrec.Options{})})
	if rec := do(r, http.MethodGet, "/history", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
