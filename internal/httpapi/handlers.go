package httpapi

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avelychko/weather-dashboard/internal/dashboard"
	"github.com/avelychko/weather-dashboard/internal/geocode"
	"github.com/avelychko/weather-dashboard/internal/upstream"
	"github.com/avelychko/weather-dashboard/internal/validation"
)

//go:embed web/index.html
var webFS embed.FS

var indexTemplate = template.Must(template.ParseFS(webFS, "web/index.html"))

// HealthConfig holds degradation thresholds for the health handler.
type HealthConfig struct {
	DegradedWindow   time.Duration
	DegradedErrorPct int
	// CachePing, when set, is called to check cache reachability. Used when backend is memcached.
	CachePing func() error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	service          *dashboard.Service
	defaultCity      string
	cityMaxLength    int
	healthConfig     *HealthConfig
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(
	service *dashboard.Service,
	defaultCity string,
	cityMaxLength int,
	healthConfig *HealthConfig,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		service:       service,
		defaultCity:   defaultCity,
		cityMaxLength: cityMaxLength,
		healthConfig:  healthConfig,
		logger:        logger,
	}
}

// GetIndex handles GET /. Serves the dashboard page with the default city
// prefilled; all data loads client-side from the JSON API.
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, map[string]string{"DefaultCity": h.defaultCity}); err != nil {
		if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
			logger.Error("index render", zap.Error(err))
		}
	}
}

// GetDashboard handles GET /api/dashboard?city=<name>. An absent or blank
// city falls back to the configured default.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		city = h.defaultCity
	}
	city, err := validation.ValidateCity(city, h.cityMaxLength)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_CITY", err.Error())
		return
	}

	d, err := h.service.Render(r.Context(), city)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "CITY_NOT_FOUND", "Could not find location: "+city)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := map[string]string{
		"geocodingApi": "healthy",
		"forecastApi":  "healthy",
	}
	if result.reason == "geocoding_error_rate" {
		checks["geocodingApi"] = "unhealthy"
	}
	if result.reason == "forecast_error_rate" {
		checks["forecastApi"] = "unhealthy"
	}
	if h.healthConfig != nil && h.healthConfig.CachePing != nil {
		if h.healthConfig.CachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
		}
	}
	resp := map[string]interface{}{
		"status":    result.status,
		"service":   "weather-dashboard",
		"version":   "dev",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// computeHealthStatus determines the current health status in priority order:
// shutting-down > degraded upstream (per-target error rate breach) > healthy.
func (h *Handler) computeHealthStatus() healthResult {
	if IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.healthConfig != nil && h.healthConfig.DegradedWindow > 0 && h.healthConfig.DegradedErrorPct > 0 {
		for _, check := range []struct {
			target string
			reason string
		}{
			{upstream.TargetGeocoding, "geocoding_error_rate"},
			{upstream.TargetForecast, "forecast_error_rate"},
		} {
			errCount, total := upstream.ErrorRate(check.target, h.healthConfig.DegradedWindow)
			if total == 0 {
				continue
			}
			pct := float64(errCount) * 100 / float64(total)
			if pct >= float64(h.healthConfig.DegradedErrorPct) {
				return healthResult{"degraded", http.StatusServiceUnavailable, check.reason}
			}
		}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// writeJSON writes a JSON response with the specified HTTP status code.
// Sets Content-Type header to application/json and encodes the provided value.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}

// writeServiceError writes a 503 Service Unavailable error response for upstream failures.
// Logs the underlying error at DEBUG level if logger is available in request context.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Unable to fetch weather data")
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		logger.Debug("upstream error", zap.Error(err))
	}
}
