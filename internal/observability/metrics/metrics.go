package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rbac_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	authOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_auth_outcomes_total",
		Help: "Login, refresh and logout attempts by result",
	}, []string{"operation", "result"})

	authzDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_authz_denials_total",
		Help: "Requests rejected by the authorization pipeline, by stage and kind",
	}, []string{"stage", "kind"})

	eventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_event_publish_failures_total",
		Help: "Identity events a sink failed to accept",
	}, []string{"sink"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveAuth counts an auth flow attempt; result is "success" or an error kind.
func ObserveAuth(operation, result string) {
	authOutcomes.WithLabelValues(operation, result).Inc()
}

func ObserveDenial(stage, kind string) {
	authzDenials.WithLabelValues(stage, kind).Inc()
}

func ObservePublishFailure(sink string) {
	eventPublishFailures.WithLabelValues(sink).Inc()
}
