package telemetry

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus primitives scraped from /metrics.
type Metrics struct {
	apiRequests     *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	documentTotals  *prometheus.HistogramVec
	documentLines   prometheus.Histogram
	settingsReloads *prometheus.CounterVec
	lockContentions prometheus.Counter
}

// NewMetrics registers Prometheus metrics on reg. A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gsttally_api_requests_total",
		Help: "Counts API requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gsttally_api_duration_seconds",
		Help:    "API request latency per method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	documentTotals := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gsttally_document_grand_total",
		Help:    "Grand total distribution of recalculated documents.",
		Buckets: []float64{100, 1000, 10000, 100000, 1000000},
	}, []string{"path"})

	documentLines := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gsttally_document_lines",
		Help:    "Line count of recalculated documents.",
		Buckets: []float64{1, 5, 10, 50, 100, 500},
	})

	settingsReloads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gsttally_settings_reloads_total",
		Help: "GST settings reloads by outcome.",
	}, []string{"status"})

	lockContentions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gsttally_document_lock_contentions_total",
		Help: "Validate requests rejected because the document was locked.",
	})

	reg.MustRegister(
		apiRequests,
		apiDuration,
		documentTotals,
		documentLines,
		settingsReloads,
		lockContentions,
	)

	return &Metrics{
		apiRequests:     apiRequests,
		apiDuration:     apiDuration,
		documentTotals:  documentTotals,
		documentLines:   documentLines,
		settingsReloads: settingsReloads,
		lockContentions: lockContentions,
	}
}

// ObserveAPIRequest records an API request and latency.
func (m *Metrics) ObserveAPIRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	methodLabel := sanitizeLabel(strings.ToUpper(method))
	routeLabel := sanitizeLabel(route)
	m.apiRequests.WithLabelValues(methodLabel, routeLabel, strconv.Itoa(status)).Inc()
	m.apiDuration.WithLabelValues(methodLabel, routeLabel).Observe(duration.Seconds())
}

// ObserveDocument records the grand total and line count of a recalculated document.
func (m *Metrics) ObserveDocument(path string, grandTotal float64, lines int) {
	if m == nil {
		return
	}
	m.documentTotals.WithLabelValues(sanitizeLabel(path)).Observe(grandTotal)
	m.documentLines.Observe(float64(lines))
}

// ObserveSettingsReload counts a settings reload attempt.
func (m *Metrics) ObserveSettingsReload(status string) {
	if m == nil {
		return
	}
	m.settingsReloads.WithLabelValues(sanitizeLabel(status)).Inc()
}

// ObserveLockContention counts a rejected concurrent validation.
func (m *Metrics) ObserveLockContention() {
	if m == nil {
		return
	}
	m.lockContentions.Inc()
}

// GinMiddleware records request counts and latency per matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.ObserveAPIRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func sanitizeLabel(val string) string {
	if strings.TrimSpace(val) == "" {
		return "unknown"
	}
	return val
}
