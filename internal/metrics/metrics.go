package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventboard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventboard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	// Media metrics
	mediaStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventboard_media_stored_total",
			Help: "Total number of media files stored",
		},
		[]string{"kind"},
	)

	mediaStoreFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventboard_media_store_failed_total",
			Help: "Total number of failed media stores",
		},
		[]string{"kind"},
	)

	mediaDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventboard_media_deleted_total",
			Help: "Total number of media delete attempts by result",
		},
		[]string{"result"},
	)

	// Auth metrics
	authRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventboard_auth_rejected_total",
			Help: "Total number of editor requests rejected by the bearer check, by reason",
		},
		[]string{"reason"},
	)
)

// RecordHTTPRequest records a finished request. route is the matched pattern, not the raw path.
func RecordHTTPRequest(method, route, status string, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordMediaStored records a successful store of a file of the given kind.
func RecordMediaStored(kind string) {
	mediaStoredTotal.WithLabelValues(kind).Inc()
}

// RecordMediaStoreFailed records a failed store.
func RecordMediaStoreFailed(kind string) {
	mediaStoreFailedTotal.WithLabelValues(kind).Inc()
}

// RecordMediaDeleted records a delete attempt; failed deletes are only logged elsewhere.
func RecordMediaDeleted(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	mediaDeletedTotal.WithLabelValues(result).Inc()
}

// RecordAuthRejected records a mutating request turned away with 401.
func RecordAuthRejected(reason string) {
	authRejectedTotal.WithLabelValues(reason).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
