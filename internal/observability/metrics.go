package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_http_requests_total",
			Help: "Total number of HTTP requests processed by the market service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "market_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	negotiationEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_negotiation_events_total",
			Help: "Total number of negotiation state transitions.",
		},
		[]string{"event"},
	)
	settlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_settlements_total",
			Help: "Total number of finalized transactions by path.",
		},
		[]string{"path"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "market_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		negotiationEventsTotal,
		settlementsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// IncNegotiationEvent counts a negotiation transition: request_created,
// request_accepted, request_rejected, request_cancelled.
func IncNegotiationEvent(event string) {
	negotiationEventsTotal.WithLabelValues(event).Inc()
}

// IncSettlement counts a finalized transaction. path is "accept" or "direct".
func IncSettlement(path string) {
	settlementsTotal.WithLabelValues(path).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
