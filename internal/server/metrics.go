package server

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "sysinfo_agent"

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests grouped by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	reportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "report_duration_seconds",
		Help:      "Time spent collecting a system report.",
		Buckets:   []float64{0.1, 0.15, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	nodeExecutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "node_executions_total",
		Help:      "Total node executions grouped by node and status.",
	}, []string{"node", "status"})
)

func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(httpRequests, httpDuration, reportDuration, nodeExecutions)
	return registry
}
