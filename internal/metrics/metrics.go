// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	MLRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ml_api_requests_total",
			Help: "Calls to the remote ML API by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	MLRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ml_api_request_duration_seconds",
			Help:    "Latency of remote ML API calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	FallbackCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ml_fallback_total",
			Help: "Responses served by the local fallback instead of the ML API",
		},
		[]string{"operation"},
	)

	XPAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_xp_awarded_total",
			Help: "XP credited to students",
		},
	)

	AchievementsUnlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_achievements_unlocked_total",
			Help: "Achievements unlocked by id",
		},
		[]string{"achievement"},
	)

	registerOnce sync.Once
)

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			MLRequestCounter,
			MLRequestDuration,
			FallbackCounter,
			XPAwarded,
			AchievementsUnlocked,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// ObserveMLRequest records one remote call; outcome is "ok" or "error".
func ObserveMLRequest(endpoint string, err error, took time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	MLRequestCounter.WithLabelValues(endpoint, outcome).Inc()
	MLRequestDuration.WithLabelValues(endpoint).Observe(took.Seconds())
}

func RecordFallback(operation string) {
	FallbackCounter.WithLabelValues(operation).Inc()
}
