// Package medrec turns a free-text complaint into a recommendation: the
// symptoms it mentions, the most likely disease, care advice and the
// specialist to see.
package medrec

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/medrec/pkg/medrec/careinfo"
	"github.com/cognicore/medrec/pkg/medrec/dataset"
	"github.com/cognicore/medrec/pkg/medrec/match"
	"github.com/cognicore/medrec/pkg/medrec/metrics"
	"github.com/cognicore/medrec/pkg/medrec/normalize"
	"github.com/cognicore/medrec/pkg/medrec/predict"
	"github.com/cognicore/medrec/pkg/medrec/specialist"
	"github.com/cognicore/medrec/pkg/medrec/store"
	"github.com/cognicore/medrec/pkg/medrec/vocab"
)

// DefaultRetryThreshold is the similarity threshold used when the whole input
// matched nothing and its comma-separated parts are tried one by one.
const DefaultRetryThreshold = 0.6

// TierLegacyPrefix marks answers from the caller-supplied or built-in
// legacy strategy, e.g. "legacy:voting".
const TierLegacyPrefix = "legacy:"

// Medrec is the recommendation facade. It is safe for concurrent use; Reload
// may run while requests are in flight.
type Medrec struct {
	holder    *vocab.Holder
	catalog   atomic.Pointer[careinfo.Catalog]
	aliases   map[string]string
	matcher   *match.Matcher
	normalize normalize.Func
	corrector *normalize.Corrector
	retry     float64
	chain     *predict.Chain
	logger    *zap.Logger
	metrics   *metrics.Metrics

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures a Medrec instance.
type Options struct {
	// Holder is shared with other readers when set; otherwise a private one
	// is created from Records.
	Holder  *vocab.Holder
	Records []vocab.Record

	Match match.Options
	// RetryThreshold defaults to DefaultRetryThreshold; negative disables
	// the comma-split retry.
	RetryThreshold float64
	Corrector      *normalize.Corrector

	Scoring predict.Config
	// Legacy runs after scoring. Nil means no legacy tier.
	Legacy predict.Strategy
	// Common defaults to the standard common-symptom rule.
	Common *predict.CommonDefault

	Catalog *careinfo.Catalog
	// Aliases are applied to catalogs rebuilt by ReloadBundle.
	Aliases map[string]string

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Recommendation is the result of one request.
type Recommendation struct {
	ID         string         `json:"id"`
	Input      string         `json:"input"`
	Symptoms   []string       `json:"symptoms"`
	Found      bool           `json:"found"`
	Disease    string         `json:"disease,omitempty"`
	Tier       string         `json:"tier"`
	Score      float64        `json:"score,omitempty"`
	Advice     *careinfo.Info `json:"advice,omitempty"`
	Specialist string         `json:"specialist,omitempty"`
	Dataset    string         `json:"dataset"`
	CreatedAt  time.Time      `json:"created_at"`
}

// History converts r into a store entry.
func (r Recommendation) History() store.HistoryEntry {
	return store.HistoryEntry{
		ID:        r.ID,
		Input:     r.Input,
		Matched:   r.Symptoms,
		Disease:   r.Disease,
		Tier:      r.Tier,
		Score:     r.Score,
		CreatedAt: r.CreatedAt,
	}
}

// New creates a Medrec instance with the given dependencies
func New(opts Options) *Medrec {
	holder := opts.Holder
	if holder == nil {
		holder = vocab.NewHolder(vocab.Build(opts.Records))
	} else if opts.Records != nil {
		holder.Rebuild(opts.Records)
	}

	norm := opts.Match.Normalize
	if norm == nil {
		norm = normalize.Text
	}
	opts.Match.Normalize = norm

	retry := opts.RetryThreshold
	if retry == 0 {
		retry = DefaultRetryThreshold
	}

	scoring := opts.Scoring
	if scoring == (predict.Config{}) {
		scoring = predict.DefaultConfig()
	}

	common := opts.Common
	if common == nil {
		common = predict.NewCommonDefault(predict.DefaultCommonSymptoms, predict.DefaultDisease)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Medrec{
		holder:    holder,
		aliases:   opts.Aliases,
		matcher:   match.New(holder, opts.Match),
		normalize: norm,
		corrector: opts.Corrector,
		retry:     retry,
		chain:     predict.Standard(predict.NewScorer(scoring), opts.Legacy, common),
		logger:    logger,
		metrics:   opts.Metrics,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}

	catalog := opts.Catalog
	if catalog == nil {
		catalog = careinfo.NewCatalog(nil, opts.Aliases)
	}
	m.catalog.Store(catalog)

	idx := holder.Load()
	m.metrics.SetVocabulary(idx.Len(), idx.DiseaseCount())
	return m
}

// Index returns the currently published vocabulary.
func (m *Medrec) Index() *vocab.Index {
	return m.holder.Load()
}

// Catalog returns the current care catalog.
func (m *Medrec) Catalog() *careinfo.Catalog {
	return m.catalog.Load()
}

// Strategies lists the prediction tiers in the order they run.
func (m *Medrec) Strategies() []string {
	return m.chain.Strategies()
}

// Symptoms extracts known symptoms from text using the current vocabulary.
func (m *Medrec) Symptoms(text string) []string {
	return m.symptoms(m.holder.Load(), text)
}

func (m *Medrec) symptoms(idx *vocab.Index, text string) []string {
	matched := m.matcher.MatchIn(idx, m.prepare(text), m.matcher.Threshold())
	if len(matched) > 0 || m.retry < 0 {
		return matched
	}

	seen := make(map[string]struct{})
	for _, part := range strings.Split(text, ",") {
		for _, s := range m.matcher.MatchIn(idx, m.prepare(part), m.retry) {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			matched = append(matched, s)
		}
	}
	return matched
}

func (m *Medrec) prepare(text string) string {
	return m.corrector.Apply(m.normalize(text))
}

// Predict runs the fallback chain over already matched symptoms.
func (m *Medrec) Predict(matched []string) predict.Result {
	return m.predict(m.holder.Load(), matched)
}

func (m *Medrec) predict(idx *vocab.Index, matched []string) predict.Result {
	res := m.chain.Predict(idx, matched)
	switch res.Tier {
	case predict.TierScoring, predict.TierCommonDefault, predict.TierNone:
	default:
		res.Tier = TierLegacyPrefix + res.Tier
	}
	return res
}

// Recommend matches text, predicts a disease and attaches advice. Every step
// reads the same vocabulary snapshot. No disease is guessed when no symptom
// was recognized.
func (m *Medrec) Recommend(text string) Recommendation {
	idx := m.holder.Load()

	start := time.Now()
	matched := m.symptoms(idx, text)
	m.metrics.ObserveMatch(time.Since(start), len(matched))

	res := m.predict(idx, matched)
	rec := Recommendation{
		ID:        m.newID(),
		Input:     text,
		Symptoms:  matched,
		Found:     res.OK,
		Tier:      res.Tier,
		Score:     res.Score,
		Dataset:   fmt.Sprintf("%016x", idx.Fingerprint()),
		CreatedAt: time.Now().UTC(),
	}
	if res.OK {
		rec.Disease = res.Disease
		advice := m.catalog.Load().Advice(res.Disease)
		rec.Advice = &advice
		rec.Specialist = string(specialist.For(res.Disease))
	}

	m.metrics.ObservePrediction(rec.Tier)
	m.logger.Debug("recommendation",
		zap.String("id", rec.ID),
		zap.Strings("symptoms", matched),
		zap.String("disease", rec.Disease),
		zap.String("tier", rec.Tier),
		zap.Float64("score", rec.Score),
	)
	return rec
}

func (m *Medrec) newID() string {
	m.idMu.Lock()
	defer m.idMu.Unlock()
	return ulid.MustNew(ulid.Now(), m.entropy).String()
}

// Reload publishes a vocabulary built from records. Readers holding the old
// index keep using it until their request finishes.
func (m *Medrec) Reload(records []vocab.Record) *vocab.Index {
	idx := m.holder.Rebuild(records)
	m.metrics.SetVocabulary(idx.Len(), idx.DiseaseCount())
	m.logger.Info("vocabulary published",
		zap.Int("records", len(records)),
		zap.Int("symptoms", idx.Len()),
		zap.Int("diseases", idx.DiseaseCount()),
		zap.String("fingerprint", fmt.Sprintf("%016x", idx.Fingerprint())),
	)
	return idx
}

// ReloadBundle publishes the catalog and vocabulary of a parsed dataset.
func (m *Medrec) ReloadBundle(b *dataset.Bundle) *vocab.Index {
	m.catalog.Store(careinfo.NewCatalog(b.Care(), m.aliases))
	return m.Reload(b.Records)
}

// ReloadDir parses a dataset directory and publishes it. On error the
// current snapshot stays in place.
func (m *Medrec) ReloadDir(ctx context.Context, dir string) error {
	b, err := dataset.LoadDir(dir)
	m.metrics.ObserveReload(err)
	if err != nil {
		return fmt.Errorf("reload %s: %w", dir, err)
	}
	m.ReloadBundle(b)
	return nil
}

// ReloadStore publishes the dataset persisted in st.
func (m *Medrec) ReloadStore(ctx context.Context, st store.Store) error {
	b, err := st.LoadDataset(ctx)
	m.metrics.ObserveReload(err)
	if err != nil {
		return fmt.Errorf("reload from store: %w", err)
	}
	m.ReloadBundle(b)
	return nil
}
