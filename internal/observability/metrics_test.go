package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestMetrics_Usable verifies that all Prometheus metrics can be used without
// panic, ensuring label dimensions match usage across the geocode, forecast,
// dashboard, and httpapi packages.
func TestMetrics_Usable(t *testing.T) {
	// Route uses path template to avoid cardinality.
	HTTPRequestsTotal.WithLabelValues("GET", "/api/dashboard", "2xx").Inc()
	HTTPRequestDuration.WithLabelValues("GET", "/api/dashboard").Observe(0.01)
	HTTPRequestsInFlight.Inc()
	HTTPRequestsInFlight.Dec()
	GeocodeCallsTotal.WithLabelValues("success").Inc()
	GeocodeDuration.WithLabelValues("success").Observe(0.1)
	ForecastCallsTotal.WithLabelValues("current", "success").Inc()
	ForecastCallsTotal.WithLabelValues("historical", "error").Inc()
	ForecastDuration.WithLabelValues("current", "success").Observe(0.1)
	CacheHitsTotal.WithLabelValues("geocode").Inc()
	CacheHitsTotal.WithLabelValues("forecast").Inc()
	DashboardRendersTotal.WithLabelValues("ok").Inc()
	DashboardRendersTotal.WithLabelValues("partial").Inc()
	DashboardRendersTotal.WithLabelValues("not_found").Inc()
	CacheWarmingTotal.Inc()
	CacheWarmingErrorsTotal.Inc()
	CacheWarmingDurationSeconds.Observe(0.5)
}

// TestMetricsHandler_ServesPrometheusFormat verifies that MetricsHandler serves
// Prometheus text exposition format with correct HTTP status and metric output.
func TestMetricsHandler_ServesPrometheusFormat(t *testing.T) {
	handler := MetricsHandler()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("MetricsHandler status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "httpRequestsTotal") {
		t.Error("MetricsHandler response should contain metric output")
	}
}
