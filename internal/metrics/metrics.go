// Package metrics exposes the Prometheus collectors of the checkout service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "content_checkout",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "content_checkout",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	openSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "content_checkout",
			Subsystem: "sessions",
			Name:      "open",
			Help:      "Current number of open checkout sessions.",
		},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "content_checkout",
			Subsystem: "purchases",
			Name:      "submissions_total",
			Help:      "Total number of checkout submissions.",
		},
		[]string{"method", "vendor"},
	)

	results = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "content_checkout",
			Subsystem: "purchases",
			Name:      "results_total",
			Help:      "Total number of submission results applied to a checkout.",
		},
		[]string{"outcome", "code"},
	)

	fundsDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "content_checkout",
			Subsystem: "purchases",
			Name:      "funds_duration_seconds",
			Help:      "Duration of funds movement calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"method"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		openSessions,
		submissions,
		results,
		fundsDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if path == "/metrics" {
			return
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func SessionOpened() { openSessions.Inc() }

func SessionClosed() { openSessions.Dec() }

// RecordSubmission counts a submission. vendor is empty for non-card methods.
func RecordSubmission(method, vendor string) {
	if vendor == "" {
		vendor = "none"
	}
	submissions.WithLabelValues(method, vendor).Inc()
}

// RecordResult counts an applied submission result. code is empty on success.
func RecordResult(code string) {
	outcome := "success"
	if code != "" {
		outcome = "error"
	} else {
		code = "none"
	}
	results.WithLabelValues(outcome, code).Inc()
}

// ObserveFunds records how long a funds movement call took.
func ObserveFunds(method string, d time.Duration) {
	fundsDuration.WithLabelValues(method).Observe(d.Seconds())
}
