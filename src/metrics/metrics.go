package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "selfai",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "selfai",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	interactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "selfai",
			Subsystem: "interactions",
			Name:      "total",
			Help:      "Interaction requests by action and outcome.",
		},
		[]string{"action", "outcome"},
	)
	approvals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "selfai",
			Subsystem: "approvals",
			Name:      "resolved_total",
			Help:      "Approval resolutions by result.",
		},
		[]string{"result"},
	)
	collaboratorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "selfai",
			Subsystem: "collaborator",
			Name:      "call_duration_seconds",
			Help:      "Latency of generation, publishing and trend calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"collaborator", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, interactions, approvals, collaboratorDuration)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordInteraction counts one interaction outcome, e.g. ("post", "queued").
func RecordInteraction(action, outcome string) {
	RegisterMetrics()
	interactions.WithLabelValues(action, outcome).Inc()
}

func RecordApproval(result string) {
	RegisterMetrics()
	approvals.WithLabelValues(result).Inc()
}

func RecordCollaboratorCall(collaborator string, success bool, duration time.Duration) {
	RegisterMetrics()
	collaboratorDuration.WithLabelValues(collaborator, strconv.FormatBool(success)).Observe(duration.Seconds())
}
