// Package metrics exposes the service's Prometheus instruments.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "budgetgm"

// Recorder owns a private registry so tests can build as many as they need.
type Recorder struct {
	registry *prometheus.Registry

	rosterMutations *prometheus.CounterVec
	predictions     *prometheus.CounterVec
	predictedWins   prometheus.Histogram
	submissions     *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	breakerState    *prometheus.GaugeVec
	rolloverResets  prometheus.Counter
	httpRequests    *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(registry)

	return &Recorder{
		registry: registry,
		rosterMutations: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "roster",
			Name:      "mutations_total",
			Help:      "Roster add/remove attempts by operation and result.",
		}, []string{"op", "result"}),
		predictions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prediction",
			Name:      "computed_total",
			Help:      "Predictions computed by position balance bucket.",
		}, []string{"balance"}),
		predictedWins: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "prediction",
			Name:      "wins",
			Help:      "Distribution of predicted wins.",
			Buckets:   prometheus.LinearBuckets(0, 10, 9),
		}),
		submissions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "submission",
			Name:      "total",
			Help:      "Team submissions by outcome.",
		}, []string{"outcome"}),
		upstreamLatency: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Latency of game backend requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		breakerState: auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "circuit_open",
			Help:      "1 while the backend circuit breaker is open or half open.",
		}, []string{"state"}),
		rolloverResets: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rollover",
			Name:      "sessions_reset_total",
			Help:      "Sessions reset at a game day boundary.",
		}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Inbound HTTP requests by method and status class.",
		}, []string{"method", "status"}),
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) RosterMutation(op string, err error) {
	if r == nil {
		return
	}
	r.rosterMutations.WithLabelValues(op, resultLabel(err)).Inc()
}

func (r *Recorder) Prediction(balance string, wins int) {
	if r == nil {
		return
	}
	r.predictions.WithLabelValues(balance).Inc()
	r.predictedWins.Observe(float64(wins))
}

func (r *Recorder) Submission(outcome string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(outcome).Inc()
}

func (r *Recorder) UpstreamRequest(operation, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.upstreamLatency.WithLabelValues(operation, status).Observe(elapsed.Seconds())
}

func (r *Recorder) BreakerState(state string) {
	if r == nil {
		return
	}
	for _, s := range []string{"closed", "open", "half_open"} {
		value := 0.0
		if s == state {
			value = 1
		}
		r.breakerState.WithLabelValues(s).Set(value)
	}
}

func (r *Recorder) RolloverReset(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.rolloverResets.Add(float64(n))
}

func (r *Recorder) HTTPRequest(method string, status int) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, statusClass(status)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "rejected"
	}
	return "ok"
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
