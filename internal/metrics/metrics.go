package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "solicitudes"

// Metrics groups the collectors of the service. A nil *Metrics records nothing.
type Metrics struct {
	Created       prometheus.Counter
	Rejected      *prometheus.CounterVec
	Transitions   *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
	Pending       prometheus.Gauge
	CounterDrift  prometheus.Gauge
	JobRuns       *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Created: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "created_total",
			Help:      "Solicitudes successfully created.",
		}),
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "create_rejected_total",
			Help:      "Create attempts refused, by error code.",
		}, []string{"code"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Status transitions applied, by target estado.",
		}, []string{"estado"}),
		HTTPDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		Pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending",
			Help:      "Solicitudes currently pending, as of the last backlog job.",
		}),
		CounterDrift: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_counter_drift",
			Help:      "Solicitantes whose pending counter disagrees with storage.",
		}),
		JobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job executions, by job and result.",
		}, []string{"job", "result"}),
		gatherer: reg,
	}
}

func (m *Metrics) ObserveCreated() {
	if m == nil {
		return
	}
	m.Created.Inc()
}

func (m *Metrics) ObserveRejected(code string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(code).Inc()
}

func (m *Metrics) ObserveTransition(estado string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(estado).Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPDurations.WithLabelValues(method, route, status).Observe(seconds)
}

func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.Pending.Set(float64(n))
}

func (m *Metrics) SetCounterDrift(n int) {
	if m == nil {
		return
	}
	m.CounterDrift.Set(float64(n))
}

func (m *Metrics) ObserveJob(job string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.JobRuns.WithLabelValues(job, result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
