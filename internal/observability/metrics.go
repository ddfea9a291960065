package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the collectors exported on the metrics endpoint.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	UpstreamCalls   *prometheus.CounterVec
	UpstreamLatency *prometheus.HistogramVec
	SignIns         *prometheus.CounterVec
	ActiveSessions  prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrportal",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hrportal",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		UpstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrportal",
			Name:      "hrapi_calls_total",
			Help:      "Calls to the remote HR API, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hrportal",
			Name:      "hrapi_call_duration_seconds",
			Help:      "Remote HR API latency, by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		SignIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrportal",
			Name:      "signins_total",
			Help:      "Sign-in attempts, by role and outcome.",
		}, []string{"role", "outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hrportal",
			Name:      "active_sessions",
			Help:      "Sessions currently held by the portal.",
		}),
	}
	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.UpstreamCalls,
		m.UpstreamLatency,
		m.SignIns,
		m.ActiveSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
