package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"messenger-api/exception"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "messenger_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"method", "route"})

	// WSConnections is the number of live websocket sessions.
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "messenger_ws_connections",
		Help: "Open websocket connections",
	})

	// WSEventsDropped counts pushes dropped because the hub was saturated.
	WSEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "messenger_ws_events_dropped_total",
		Help: "Realtime events dropped because the broadcast queue was full",
	})
)

// Metrics records every request. An error returned down the chain is
// resolved to the status the error handler is going to send.
func Metrics(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = exception.StatusOf(err)
	}
	route := c.Route().Path
	if route == "" {
		route = "unmatched"
	}

	httpRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
	return err
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
