package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "promptcraft"

// outcome labels
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
	OutcomeDenied   = "denied"
)

// service counters; a nil *Metrics records nothing
type Metrics struct {
	registry *prometheus.Registry

	optimizations    *prometheus.CounterVec
	quotaDenials     *prometheus.CounterVec
	generationTime   *prometheus.HistogramVec
	historyDeletes   *prometheus.CounterVec
	emails           *prometheus.CounterVec
	promoRedemptions *prometheus.CounterVec
}

// registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		optimizations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizations_total",
			Help:      "Optimization requests by style and outcome.",
		}, []string{"style", "outcome"}),
		quotaDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_denials_total",
			Help:      "Optimizations refused by the daily quota.",
		}, []string{"identity"}),
		generationTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Latency of text generation calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"model"}),
		historyDeletes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_deletes_total",
			Help:      "History entries removed by clear, by outcome.",
		}, []string{"outcome"}),
		emails: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_total",
			Help:      "Outbound emails by kind and outcome.",
		}, []string{"kind", "outcome"}),
		promoRedemptions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promo_redemptions_total",
			Help:      "Promo code redemption attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Optimization(style, outcome string) {
	if m == nil {
		return
	}

	m.optimizations.WithLabelValues(style, outcome).Inc()
}

func (m *Metrics) QuotaDenied(anonymous bool) {
	if m == nil {
		return
	}

	identity := "account"
	if anonymous {
		identity = "anonymous"
	}

	m.quotaDenials.WithLabelValues(identity).Inc()
}

func (m *Metrics) ObserveGeneration(model string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.generationTime.WithLabelValues(model).Observe(elapsed.Seconds())
}

func (m *Metrics) HistoryCleared(deleted, failed int) {
	if m == nil {
		return
	}

	m.historyDeletes.WithLabelValues(OutcomeSuccess).Add(float64(deleted))
	m.historyDeletes.WithLabelValues(OutcomeError).Add(float64(failed))
}

func (m *Metrics) Email(kind, outcome string) {
	if m == nil {
		return
	}

	m.emails.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) PromoRedemption(outcome string) {
	if m == nil {
		return
	}

	m.promoRedemptions.WithLabelValues(outcome).Inc()
}
