package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the issuance pipeline's Prometheus collectors. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec
	nameFallback  *prometheus.CounterVec
	mints         *prometheus.CounterVec

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "certificate_stage_duration_seconds",
				Help:    "duration of each issuance pipeline stage",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"stage", "outcome"},
		),
		stageFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certificate_stage_failures_total",
				Help: "issuance pipeline stage failures by fault code",
			},
			[]string{"stage", "code"},
		),
		nameFallback: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certificate_name_fallback_total",
				Help: "display-name lookups that fell back to a placeholder",
			},
			[]string{"kind"},
		),
		mints: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certificate_mints_total",
				Help: "mint attempts by outcome",
			},
			[]string{"outcome"},
		),
		apiRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certchain_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		apiLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "certchain_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		apiInflight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "certchain_http_inflight_requests",
			Help: "HTTP requests currently being served",
		}),
	}
}

func (m *Metrics) ObserveStage(stage string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.stageDuration.WithLabelValues(stage, outcome).Observe(d.Seconds())
}

func (m *Metrics) StageFailed(stage, code string) {
	if m == nil {
		return
	}
	m.stageFailures.WithLabelValues(stage, code).Inc()
}

func (m *Metrics) NameFallback(kind string) {
	if m == nil {
		return
	}
	m.nameFallback.WithLabelValues(kind).Inc()
}

func (m *Metrics) Mint(outcome string) {
	if m == nil {
		return
	}
	m.mints.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAPI(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(d.Seconds())
}
