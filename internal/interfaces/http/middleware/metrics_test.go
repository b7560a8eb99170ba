package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetricByName(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func meteredRouter(t *testing.T) (*gin.Engine, *sdkmetric.ManualReader) {
	t.Helper()
	mp, reader := setupTestMeter(t)
	router := gin.New()
	router.Use(HTTPMetrics(mp.Meter("http.server")))
	router.POST("/api/v1/extrator-email", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"emails": []string{"a@x.com"}})
	})
	router.POST("/api/v1/salesforce", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})
	return router, reader
}

func TestHTTPMetrics_NilMeter(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(nil))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetrics_RequestCounter(t *testing.T) {
	router, reader := meteredRouter(t)

	for _, path := range []string{"/api/v1/extrator-email", "/api/v1/extrator-email", "/api/v1/salesforce", "/missing"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader("body")))
	}

	rm := collectMetrics(t, reader)
	m := findMetricByName(rm, "http_server_request_total")
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byRoute := map[string]int64{}
	for _, dp := range sum.DataPoints {
		route, _ := dp.Attributes.Value("http.route")
		byRoute[route.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{
		"/api/v1/extrator-email": 2,
		"/api/v1/salesforce":     1,
		"unknown":                1,
	}, byRoute)
}

func TestHTTPMetrics_Histograms(t *testing.T) {
	router, reader := meteredRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/extrator-email", strings.NewReader("0123456789")))

	rm := collectMetrics(t, reader)
	for _, name := range []string{
		"http_server_request_duration_seconds",
		"http_server_request_size_bytes",
		"http_server_response_size_bytes",
	} {
		m := findMetricByName(rm, name)
		require.NotNil(t, m, name)
		hist, ok := m.Data.(metricdata.Histogram[float64])
		require.True(t, ok, name)
		require.Len(t, hist.DataPoints, 1, name)
		assert.Equal(t, uint64(1), hist.DataPoints[0].Count, name)
	}

	size := findMetricByName(rm, "http_server_request_size_bytes").Data.(metricdata.Histogram[float64])
	assert.Equal(t, float64(10), size.DataPoints[0].Sum)

	active := findMetricByName(rm, "http_server_active_requests")
	require.NotNil(t, active)
	activeSum := active.Data.(metricdata.Sum[int64])
	require.Len(t, activeSum.DataPoints, 1)
	assert.Equal(t, int64(0), activeSum.DataPoints[0].Value)
}

func TestStatusGroup(t *testing.T) {
	tests := map[int]string{
		200: "2xx",
		301: "3xx",
		404: "4xx",
		413: "4xx",
		500: "5xx",
		100: "other",
	}
	for code, want := range tests {
		assert.Equal(t, want, statusGroup(code), "status %d", code)
	}
}
