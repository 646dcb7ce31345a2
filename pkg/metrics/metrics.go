// Package metrics defines the Prometheus metric collectors used by the
// discovery pipeline and the vocab server, and exposes an HTTP handler for
// scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the platform.
type Metrics struct {
	RecordsDecodedTotal prometheus.Counter
	RecordsKeptTotal    prometheus.Counter
	NgramsRetained      *prometheus.GaugeVec
	Candidates          *prometheus.GaugeVec
	StageDuration       *prometheus.HistogramVec
	VocabularySize      prometheus.Gauge
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	TokenizeLatency     prometheus.Histogram
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	VocabReloadsTotal   *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		RecordsDecodedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ngram_records_decoded_total",
				Help: "Total n-gram records read from the binary count file.",
			},
		),
		RecordsKeptTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ngram_records_kept_total",
				Help: "Total n-gram records at or above the minimum count.",
			},
		),
		NgramsRetained: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ngrams_retained",
				Help: "Number of n-grams retained by the PMI filter, by order.",
			},
			[]string{"order"},
		),
		Candidates: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "discovery_candidates",
				Help: "Candidate vocabulary size after each filtering stage (raw, frequency, validated).",
			},
			[]string{"stage"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "discovery_stage_duration_seconds",
				Help:    "Wall-clock duration of each pipeline stage.",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1200, 3600},
			},
			[]string{"stage"},
		),
		VocabularySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "vocabulary_size",
				Help: "Number of tokens in the vocabulary currently served.",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		TokenizeLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tokenize_latency_seconds",
				Help:    "Latency of trie tokenization per sentence.",
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of tokenize cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of tokenize cache misses.",
			},
		),
		VocabReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vocab_reloads_total",
				Help: "Total vocabulary reloads by status.",
			},
			[]string{"status"},
		),
	}

	prometheus.MustRegister(
		m.RecordsDecodedTotal,
		m.RecordsKeptTotal,
		m.NgramsRetained,
		m.Candidates,
		m.StageDuration,
		m.VocabularySize,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TokenizeLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.VocabReloadsTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
