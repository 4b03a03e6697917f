package httpapi

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pgRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phishguard_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	pgRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phishguard_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	pgAnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phishguard_analyses_total",
		Help: "Completed URL analyses by verdict level.",
	}, []string{"level"})

	pgRateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phishguard_rate_limited_total",
		Help: "Analysis requests rejected by the per-caller sliding window.",
	})

	pgReportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phishguard_reports_total",
		Help: "Phishing reports filed.",
	})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		pgRequestsTotal.WithLabelValues(method, path, status).Inc()
		pgRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// recordAnalysis records a completed analysis by verdict level.
func recordAnalysis(level string) {
	pgAnalysesTotal.WithLabelValues(level).Inc()
}
