package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tendant/voicehub/pkg/tenancy"
)

var (
	// RequestsTotal counts HTTP requests by route pattern.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicehub",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration observes HTTP latency by route pattern.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "voicehub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// TenantResolutions counts resolver outcomes.
	TenantResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicehub",
			Subsystem: "tenancy",
			Name:      "resolutions_total",
			Help:      "Tenant context resolutions by scope and outcome",
		},
		[]string{"scope", "outcome"},
	)

	// LastLoginFailures counts background last-login writes that failed.
	LastLoginFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "voicehub",
			Subsystem: "tenancy",
			Name:      "last_login_update_failures_total",
			Help:      "Super admin last-login updates that failed",
		},
	)
)

// RecordRequest records a completed HTTP request.
func RecordRequest(method, route, status string, seconds float64) {
	RequestsTotal.WithLabelValues(method, route, status).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// TenancyRecorder feeds resolver telemetry into Prometheus.
type TenancyRecorder struct{}

// Resolution implements tenancy.Recorder.
func (TenancyRecorder) Resolution(scope tenancy.Scope, outcome string) {
	TenantResolutions.WithLabelValues(string(scope), outcome).Inc()
}

// LastLoginFailed implements tenancy.Recorder.
func (TenancyRecorder) LastLoginFailed() {
	LastLoginFailures.Inc()
}
