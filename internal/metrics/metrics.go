package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	SubmissionsTotal   *prometheus.CounterVec
	TransitionsTotal   *prometheus.CounterVec
	LoginsTotal        *prometheus.CounterVec
	LedgerRecords      *prometheus.CounterVec
	PendingResolved    *prometheus.CounterVec
	RateLimited        *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
}

// New creates the collectors on a dedicated registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SubmissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_submissions_total",
			Help: "Submission attempts by result",
		}, []string{"result"}),

		TransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_transitions_total",
			Help: "Review transitions by target status and result",
		}, []string{"status", "result"}),

		LoginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_admin_logins_total",
			Help: "Admin login attempts by method and result",
		}, []string{"method", "result"}),

		LedgerRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_ledger_records_total",
			Help: "Disbursements recorded in the ledger by asset kind",
		}, []string{"asset"}),

		PendingResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_pending_transfers_resolved_total",
			Help: "Unconfirmed transfers resolved by the sweeper by outcome",
		}, []string{"outcome"}),

		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter by route",
		}, []string{"route"}),

		HTTPRequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "onboarding_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Result labels
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

func (m *Metrics) IncSubmission(result string) {
	if m != nil {
		m.SubmissionsTotal.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncTransition(status, result string) {
	if m != nil {
		m.TransitionsTotal.WithLabelValues(status, result).Inc()
	}
}

func (m *Metrics) IncLogin(method, result string) {
	if m != nil {
		m.LoginsTotal.WithLabelValues(method, result).Inc()
	}
}

func (m *Metrics) IncLedgerRecord(asset string) {
	if m != nil {
		m.LedgerRecords.WithLabelValues(asset).Inc()
	}
}

func (m *Metrics) IncPendingResolved(outcome string) {
	if m != nil {
		m.PendingResolved.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncRateLimited(route string) {
	if m != nil {
		m.RateLimited.WithLabelValues(route).Inc()
	}
}

// ObserveHTTPRequest records the latency of a served request
func (m *Metrics) ObserveHTTPRequest(method, route, status string, d time.Duration) {
	if m != nil {
		m.HTTPRequestLatency.WithLabelValues(method, route, status).Observe(d.Seconds())
	}
}
