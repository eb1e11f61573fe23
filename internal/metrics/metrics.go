package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staybook_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "staybook_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	bookingOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staybook_booking_requests_total",
		Help: "Booking creation attempts by outcome",
	}, []string{"result"})

	sweepTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staybook_sweep_records_total",
		Help: "Records changed by the automation sweep, by pass",
	}, []string{"pass"})

	sweepFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staybook_sweep_failures_total",
		Help: "Automation sweep pass failures",
	}, []string{"pass"})

	sweepLastRun = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "staybook_sweep_last_run_timestamp_seconds",
		Help: "Unix time of the last automation sweep",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveBooking records a booking attempt: "created", "conflict", "busy" or "error".
func ObserveBooking(result string) {
	bookingOutcomes.WithLabelValues(result).Inc()
}

func ObserveSweepPass(pass string, changed int64, err error) {
	if err != nil {
		sweepFailures.WithLabelValues(pass).Inc()
		return
	}
	sweepTransitions.WithLabelValues(pass).Add(float64(changed))
}

func SetSweepLastRun(t time.Time) {
	sweepLastRun.Set(float64(t.Unix()))
}
