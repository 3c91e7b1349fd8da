// Package metrics exposes Prometheus instruments for recommendation traffic.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medrec"

// Metrics owns a private registry so tests and embedders never collide on
// the global one.
type Metrics struct {
	registry *prometheus.Registry

	predictions   *prometheus.CounterVec
	matchDuration prometheus.Histogram
	matched       prometheus.Histogram
	vocabulary    *prometheus.GaugeVec
	reloads       *prometheus.CounterVec
}

// New registers all instruments. Process and Go runtime collectors are added
// when runtime is true.
func New(runtime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if runtime {
		reg.MustRegister(
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
			prometheus.NewGoCollector(),
		)
	}

	m := &Metrics{
		registry: reg,
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Recommendations served, by answering tier.",
		}, []string{"tier"}),
		matchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "Time spent extracting symptoms from one input.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		matched: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matched_symptoms",
			Help:      "Number of symptoms matched per input.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		}),
		vocabulary: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vocabulary_size",
			Help:      "Entries in the published vocabulary.",
		}, []string{"kind"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_reloads_total",
			Help:      "Dataset reload attempts, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.predictions, m.matchDuration, m.matched, m.vocabulary, m.reloads)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePrediction counts one recommendation answered by tier.
func (m *Metrics) ObservePrediction(tier string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(tier).Inc()
}

// ObserveMatch records matching latency and the number of symptoms found.
func (m *Metrics) ObserveMatch(d time.Duration, matched int) {
	if m == nil {
		return
	}
	m.matchDuration.Observe(d.Seconds())
	m.matched.Observe(float64(matched))
}

// SetVocabulary records the size of the published index.
func (m *Metrics) SetVocabulary(symptoms, diseases int) {
	if m == nil {
		return
	}
	m.vocabulary.WithLabelValues("symptoms").Set(float64(symptoms))
	m.vocabulary.WithLabelValues("diseases").Set(float64(diseases))
}

// ObserveReload counts a reload attempt.
func (m *Metrics) ObserveReload(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reloads.WithLabelValues(result).Inc()
}
