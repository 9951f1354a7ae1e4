package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const serviceName = "ticket-preview"

var (
	// HTTP request counter
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status", "service"},
	)

	// HTTP request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	// Ticket intake outcomes: created, validation, persistence, unexpected
	TicketSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_submissions_total",
			Help: "Total number of ticket form submissions by outcome",
		},
		[]string{"outcome"},
	)

	ActivePreviews = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ticket_previews_active",
			Help: "Number of mounted ticket previews",
		},
	)

	// Transfer popup transitions: open, confirm, cancel
	TransferTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_transfer_transitions_total",
			Help: "Total number of transfer selection transitions",
		},
		[]string{"transition"},
	)

	TransferredSeats = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticket_transfer_seats",
			Help:    "Number of seats handed off per confirmed transfer",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12},
		},
	)

	ImageFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticket_card_image_fallbacks_total",
			Help: "Total number of cards that switched to the fallback image",
		},
	)
)

// PrometheusMiddleware records HTTP metrics
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestsTotal.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			serviceName,
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
			serviceName,
		).Observe(time.Since(start).Seconds())
	}
}
