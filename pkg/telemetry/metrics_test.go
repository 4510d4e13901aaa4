package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAPIRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveAPIRequest("post", "/api/sales-invoices/validate", 200, 10*time.Millisecond)
	m.ObserveAPIRequest("post", "/api/sales-invoices/validate", 200, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("POST", "/api/sales-invoices/validate", "200")))
}

func TestObserveDocumentAndReloads(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveDocument("normal", 1180, 1)
	m.ObserveSettingsReload("ok")
	m.ObserveLockContention()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.settingsReloads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lockContentions))

	count, err := testutil.GatherAndCount(reg, "gsttally_document_grand_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAPIRequest("GET", "/health", 200, time.Millisecond)
		m.ObserveDocument("normal", 1, 1)
		m.ObserveSettingsReload("error")
		m.ObserveLockContention()
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("GET", "/health", "200")))
}
