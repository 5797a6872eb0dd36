package middleware

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formbuilder",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "formbuilder",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	requestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "formbuilder",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)
	dbPoolStats = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "formbuilder",
			Subsystem: "db",
			Name:      "connection_pool",
			Help:      "Database connection pool statistics",
		},
		[]string{"stat"},
	)
)

// Metrics records count, latency and in-flight requests per matched route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestCounter.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordDBPoolStats publishes sql.DB pool statistics.
func RecordDBPoolStats(s sql.DBStats) {
	dbPoolStats.WithLabelValues("open").Set(float64(s.OpenConnections))
	dbPoolStats.WithLabelValues("in_use").Set(float64(s.InUse))
	dbPoolStats.WithLabelValues("idle").Set(float64(s.Idle))
	dbPoolStats.WithLabelValues("wait_count").Set(float64(s.WaitCount))
	dbPoolStats.WithLabelValues("wait_duration_ms").Set(float64(s.WaitDuration.Milliseconds()))
}
