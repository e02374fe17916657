// Package metrics exposes ladder activity as Prometheus counters.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pickleladder"

// Metrics implements ladder.Observer and email.DeliveryObserver.
type Metrics struct {
	registry *prometheus.Registry

	results      *prometheus.CounterVec
	finalized    *prometheus.CounterVec
	cancelled    prometheus.Counter
	rankCommits  prometheus.Counter
	deactivated  prometheus.Counter
	emails       *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers the ladder collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_results_recorded_total",
			Help:      "Team results recorded, by kind (submit or confirm).",
		}, []string{"kind"}),
		finalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_finalized_total",
			Help:      "Matches completed, by resolution (agreed or forced).",
		}, []string{"resolution"}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_cancelled_total",
			Help:      "Scheduled matches cancelled by an administrator.",
		}),
		rankCommits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_commits_total",
			Help:      "Ladder re-rank batches committed.",
		}),
		deactivated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memberships_deactivated_total",
			Help:      "Memberships deactivated after expiry.",
		}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_emails_total",
			Help:      "Match notification emails, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
	}

	reg.MustRegister(
		m.results,
		m.finalized,
		m.cancelled,
		m.rankCommits,
		m.deactivated,
		m.emails,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ResultRecorded(kind string) {
	m.results.WithLabelValues(kind).Inc()
}

func (m *Metrics) MatchFinalized(forced bool) {
	resolution := "agreed"
	if forced {
		resolution = "forced"
	}
	m.finalized.WithLabelValues(resolution).Inc()
}

func (m *Metrics) MatchCancelled() {
	m.cancelled.Inc()
}

func (m *Metrics) RanksCommitted() {
	m.rankCommits.Inc()
}

func (m *Metrics) MembershipsDeactivated(n int) {
	m.deactivated.Add(float64(n))
}

func (m *Metrics) EmailSent(kind string) {
	m.emails.WithLabelValues(kind, "sent").Inc()
}

func (m *Metrics) EmailFailed(kind string) {
	m.emails.WithLabelValues(kind, "failed").Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// WithRequestMetrics records request latency.
func (m *Metrics) WithRequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.httpDuration.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Observe(time.Since(start).Seconds())
	})
}
