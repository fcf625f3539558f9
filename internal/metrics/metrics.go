// Package metrics collects Prometheus metrics for bookings and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the Prometheus-backed recorder used by the session service and
// the HTTP middleware.
type Collector struct {
	sessionsBooked      prometheus.Counter
	sessionsCanceled    prometheus.Counter
	sessionsRescheduled prometheus.Counter
	bookingsRejected    *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpLatency         *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionsBooked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coaching_sessions_booked_total",
			Help: "Sessions created.",
		}),
		sessionsCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coaching_sessions_canceled_total",
			Help: "Sessions canceled.",
		}),
		sessionsRescheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coaching_sessions_rescheduled_total",
			Help: "Sessions moved to a new start time.",
		}),
		bookingsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coaching_booking_rejections_total",
			Help: "Create or reschedule requests refused, by reason.",
		}, []string{"reason"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coaching_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coaching_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.sessionsBooked,
		c.sessionsCanceled,
		c.sessionsRescheduled,
		c.bookingsRejected,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

func (c *Collector) SessionBooked()      { c.sessionsBooked.Inc() }
func (c *Collector) SessionCanceled()    { c.sessionsCanceled.Inc() }
func (c *Collector) SessionRescheduled() { c.sessionsRescheduled.Inc() }

func (c *Collector) BookingRejected(reason string) {
	c.bookingsRejected.WithLabelValues(reason).Inc()
}

// Middleware records count and latency for every request. Unmatched routes
// share one label value to keep cardinality bounded.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method

		c.httpRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpLatency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
