// Package metrics registers the Prometheus collectors for the backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "grc_http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grc_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grc_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	EventsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grc_events_created_total",
			Help: "Workflow events created, by record kind and trigger.",
		},
		[]string{"kind", "trigger"},
	)

	EventsDeduplicated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grc_events_deduplicated_total",
			Help: "Event creations skipped because an open event already existed.",
		},
		[]string{"kind"},
	)

	RisksGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grc_risks_generated_total",
			Help: "Risks persisted by the synthesizer, by generation mode.",
		},
		[]string{"mode"},
	)

	CompleterFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "grc_completer_failures_total",
		Help: "Transport failures talking to the completion service.",
	})

	NotificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grc_notifications_sent_total",
			Help: "Event notifications attempted, by result.",
		},
		[]string{"result"},
	)
)

// Init registers every collector with the default registry. Call once
// from main.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		EventsCreated, EventsDeduplicated, RisksGenerated,
		CompleterFailures, NotificationsSent,
	)
}

// Handler serves the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument wraps a handler with request counting and latency
// measurement.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpInFlight.Dec()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.code = code
	sw.ResponseWriter.WriteHeader(code)
}
