// internal/metrics/http.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetrics records request counts and latencies per route.
type HTTPMetrics struct {
	ServiceName string

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	statuses *prometheus.CounterVec
}

func NewHTTPMetrics(reg prometheus.Registerer, namespace, serviceName string) *HTTPMetrics {
	factory := promauto.With(reg)
	return &HTTPMetrics{
		ServiceName: serviceName,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"service", "method", "path", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "method", "path", "status"},
		),
		statuses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_status_category_total",
				Help:      "Total number of responses by status category (2xx, 4xx, 5xx)",
			},
			[]string{"service", "category"},
		),
	}
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	}
	return "other"
}

// Middleware records metrics after the request is processed.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		statusStr := strconv.Itoa(status)
		method := c.Request.Method

		m.requests.WithLabelValues(m.ServiceName, method, path, statusStr).Inc()
		m.statuses.WithLabelValues(m.ServiceName, statusCategory(status)).Inc()
		m.duration.WithLabelValues(m.ServiceName, method, path, statusStr).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
