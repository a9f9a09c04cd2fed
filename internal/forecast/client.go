package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avelychko/weather-dashboard/internal/models"
	"github.com/avelychko/weather-dashboard/internal/observability"
	"github.com/avelychko/weather-dashboard/internal/upstream"
)

// Mode selects which forecast query to issue.
type Mode string

const (
	// ModeCurrent requests instantaneous conditions plus a 1-day hourly breakdown.
	ModeCurrent Mode = "current"
	// ModeHistorical requests daily aggregates for the 7 days ending yesterday.
	ModeHistorical Mode = "historical"
)

// ErrUpstream means the forecast call failed at the transport or HTTP level.
// The whole payload is then unavailable; there is no partial reconstruction
// and no retry within the render cycle.
var ErrUpstream = errors.New("forecast upstream failure")

// Client fetches raw weather data for a coordinate pair.
type Client interface {
	Fetch(ctx context.Context, lat, lon float64, mode Mode) (models.Payload, error)
}

// OpenMeteoClient implements Client against the Open-Meteo forecast endpoint.
type OpenMeteoClient struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewOpenMeteoClient returns an OpenMeteoClient with the given base URL and
// per-call timeout, using the wall clock for the historical date window.
func NewOpenMeteoClient(baseURL string, timeout time.Duration) *OpenMeteoClient {
	return NewOpenMeteoClientWithClock(baseURL, timeout, time.Now)
}

// NewOpenMeteoClientWithClock is NewOpenMeteoClient with an injectable clock,
// keeping the historical date-range computation deterministic in tests.
func NewOpenMeteoClientWithClock(baseURL string, timeout time.Duration, now func() time.Time) *OpenMeteoClient {
	return &OpenMeteoClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		now: now,
	}
}

// Fetch issues a single forecast request for the coordinates in the given mode.
func (c *OpenMeteoClient) Fetch(ctx context.Context, lat, lon float64, mode Mode) (models.Payload, error) {
	start := time.Now()
	label := string(mode)

	req, err := c.buildRequest(ctx, lat, lon, mode)
	if err != nil {
		observability.ForecastCallsTotal.WithLabelValues(label, "error").Inc()
		return models.Payload{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.ForecastCallsTotal.WithLabelValues(label, "error").Inc()
		observability.ForecastDuration.WithLabelValues(label, "error").Observe(time.Since(start).Seconds())
		upstream.RecordError(upstream.TargetForecast)
		return models.Payload{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.ForecastCallsTotal.WithLabelValues(label, status).Inc()
	observability.ForecastDuration.WithLabelValues(label, status).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstream.RecordError(upstream.TargetForecast)
		return models.Payload{}, fmt.Errorf("%w: HTTP %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		upstream.RecordError(upstream.TargetForecast)
		return models.Payload{}, fmt.Errorf("read response body: %w", err)
	}

	var payload models.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		upstream.RecordError(upstream.TargetForecast)
		return models.Payload{}, fmt.Errorf("parse response: %w", err)
	}
	upstream.RecordSuccess(upstream.TargetForecast)

	return payload, nil
}

func (c *OpenMeteoClient) buildRequest(ctx context.Context, lat, lon float64, mode Mode) (*http.Request, error) {
	baseURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid forecast URL: %w", err)
	}

	params := url.Values{}
	params.Set("latitude", formatCoord(lat))
	params.Set("longitude", formatCoord(lon))

	switch mode {
	case ModeHistorical:
		start, end := HistoricalWindow(c.now())
		params.Set("start_date", start)
		params.Set("end_date", end)
		params.Set("daily", "temperature_2m_max,temperature_2m_min,weather_code")
	default:
		params.Set("current", "temperature_2m,weather_code,precipitation_probability,wind_speed_10m")
		params.Set("hourly", "temperature_2m,precipitation_probability,wind_speed_10m")
		params.Set("forecast_days", "1")
	}
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if corrID := extractCorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}
	return req, nil
}

// HistoricalWindow returns the inclusive start and end dates (YYYY-MM-DD) of
// the 7-day window ending yesterday, computed from now in UTC. UTC pins the
// boundary regardless of server timezone; aligning to the queried city's local
// date instead would need a timezone lookup the geocoding response doesn't carry.
func HistoricalWindow(now time.Time) (start, end string) {
	today := now.UTC()
	return today.AddDate(0, 0, -7).Format("2006-01-02"),
		today.AddDate(0, 0, -1).Format("2006-01-02")
}

// formatCoord formats a coordinate with minimal digits (12.5 -> "12.5", 12 -> "12").
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func extractCorrelationID(ctx context.Context) string {
	if v := ctx.Value("correlation_id"); v != nil {
		if corrID, ok := v.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
