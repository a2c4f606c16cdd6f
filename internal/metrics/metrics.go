package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flightpulse"

// Outcome labels
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector holds all metrics on its own registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	vendorCalls   *prometheus.CounterVec
	vendorLatency *prometheus.HistogramVec
	bookings      *prometheus.CounterVec
	retries       prometheus.Counter
	tokens        *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

// NewCollector creates a collector with Go runtime and process metrics registered
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "User requests handled, by kind.",
		}, []string{"kind"}),
		vendorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vendor_calls_total",
			Help:      "Flight vendor API calls, by operation and outcome.",
		}, []string{"op", "outcome"}),
		vendorLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vendor_call_duration_seconds",
			Help:      "Flight vendor API call latency.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"op"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking attempts, by result.",
		}, []string{"result"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_retries_total",
			Help:      "Automatic re-search and re-book after a segment sell failure.",
		}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_tokens_total",
			Help:      "Completion provider tokens, by direction.",
		}, []string{"direction"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sandbox_http_requests_total",
			Help:      "Sandbox vendor HTTP requests, by route and status code.",
		}, []string{"route", "code"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.requests,
		c.vendorCalls,
		c.vendorLatency,
		c.bookings,
		c.retries,
		c.tokens,
		c.httpRequests,
	)
	return c
}

// IncRequest counts a handled user request
func (c *Collector) IncRequest(kind string) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(kind).Inc()
}

// ObserveVendorCall records one vendor call and its latency
func (c *Collector) ObserveVendorCall(op string, err error, d time.Duration) {
	if c == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	c.vendorCalls.WithLabelValues(op, outcome).Inc()
	c.vendorLatency.WithLabelValues(op).Observe(d.Seconds())
}

// IncBooking counts a finished booking attempt
func (c *Collector) IncBooking(result string) {
	if c == nil {
		return
	}
	c.bookings.WithLabelValues(result).Inc()
}

// IncRetry counts an automatic booking retry
func (c *Collector) IncRetry() {
	if c == nil {
		return
	}
	c.retries.Inc()
}

// AddTokens adds completion token usage
func (c *Collector) AddTokens(input, output int) {
	if c == nil {
		return
	}
	c.tokens.WithLabelValues("input").Add(float64(input))
	c.tokens.WithLabelValues("output").Add(float64(output))
}

// ObserveHTTP counts a sandbox HTTP response
func (c *Collector) ObserveHTTP(route string, code int) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
