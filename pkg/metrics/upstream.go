package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics records outcomes of calls against the remote business API.
type UpstreamMetrics struct {
	duration      *prometheus.HistogramVec
	success       *prometheus.CounterVec
	failure       *prometheus.CounterVec
	staleDiscards prometheus.Counter
}

// NewUpstreamMetrics registers the upstream call metrics on the provided registerer.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of upstream API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_request_success",
		Help: "Successful upstream API requests.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_request_failure",
		Help: "Failed upstream API requests.",
	}, []string{"operation", "code"})
	staleDiscards := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_stale_responses_discarded_total",
		Help: "Cart responses dropped because the active store changed mid-flight.",
	})
	reg.MustRegister(duration, success, failure, staleDiscards)
	return &UpstreamMetrics{
		duration:      duration,
		success:       success,
		failure:       failure,
		staleDiscards: staleDiscards,
	}
}

// ObserveDuration records the duration for the named operation.
func (u *UpstreamMetrics) ObserveDuration(operation string, duration time.Duration) {
	if u == nil || u.duration == nil {
		return
	}
	u.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (u *UpstreamMetrics) IncSuccess(operation string) {
	if u == nil || u.success == nil {
		return
	}
	u.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation and error code.
func (u *UpstreamMetrics) IncFailure(operation, code string) {
	if u == nil || u.failure == nil {
		return
	}
	u.failure.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}

// IncStaleDiscard counts a response dropped by the store-switch guard.
func (u *UpstreamMetrics) IncStaleDiscard() {
	if u == nil || u.staleDiscards == nil {
		return
	}
	u.staleDiscards.Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
