package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avelychko/weather-dashboard/internal/models"
	"github.com/avelychko/weather-dashboard/internal/observability"
	"github.com/avelychko/weather-dashboard/internal/upstream"
)

// ErrNotFound means the geocoding service answered successfully but had no
// match for the city. User-correctable; the caller skips the forecast calls.
var ErrNotFound = errors.New("city not found")

// ErrUpstream means the geocoding call failed at the transport or HTTP level.
var ErrUpstream = errors.New("geocoding upstream failure")

// Client resolves a free-text city name to coordinates.
type Client interface {
	Lookup(ctx context.Context, city string) (models.Location, error)
}

// OpenMeteoClient implements Client against the Open-Meteo geocoding search
// endpoint. A single attempt per call; failures are terminal for the render cycle.
type OpenMeteoClient struct {
	baseURL string
	client  *http.Client
}

// NewOpenMeteoClient returns an OpenMeteoClient with the given base URL and
// per-call timeout.
func NewOpenMeteoClient(baseURL string, timeout time.Duration) *OpenMeteoClient {
	return &OpenMeteoClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type searchResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
	} `json:"results"`
}

// Lookup requests exactly one match for the city and returns the first result.
// Returns ErrNotFound when the response carries no results, or a wrapped
// ErrUpstream on transport/HTTP failure.
func (c *OpenMeteoClient) Lookup(ctx context.Context, city string) (models.Location, error) {
	start := time.Now()

	req, err := c.buildRequest(ctx, city)
	if err != nil {
		observability.GeocodeCallsTotal.WithLabelValues("error").Inc()
		return models.Location{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.GeocodeCallsTotal.WithLabelValues("error").Inc()
		observability.GeocodeDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		upstream.RecordError(upstream.TargetGeocoding)
		return models.Location{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.GeocodeCallsTotal.WithLabelValues(status).Inc()
	observability.GeocodeDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstream.RecordError(upstream.TargetGeocoding)
		return models.Location{}, fmt.Errorf("%w: HTTP %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		upstream.RecordError(upstream.TargetGeocoding)
		return models.Location{}, fmt.Errorf("read response body: %w", err)
	}

	var apiResp searchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		upstream.RecordError(upstream.TargetGeocoding)
		return models.Location{}, fmt.Errorf("parse response: %w", err)
	}
	upstream.RecordSuccess(upstream.TargetGeocoding)

	if len(apiResp.Results) == 0 {
		return models.Location{}, fmt.Errorf("%w: %s", ErrNotFound, city)
	}

	first := apiResp.Results[0]
	return models.Location{
		Name:      city,
		Latitude:  first.Latitude,
		Longitude: first.Longitude,
		Country:   first.Country,
	}, nil
}

func (c *OpenMeteoClient) buildRequest(ctx context.Context, city string) (*http.Request, error) {
	baseURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid geocoding URL: %w", err)
	}

	params := url.Values{}
	params.Set("name", city)
	params.Set("count", "1")
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
