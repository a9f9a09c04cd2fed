package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avelychko/weather-dashboard/internal/forecast"
	"github.com/avelychko/weather-dashboard/internal/geocode"
	"github.com/avelychko/weather-dashboard/internal/models"
	"github.com/avelychko/weather-dashboard/internal/observability"
	"github.com/avelychko/weather-dashboard/internal/view"
)

// Resolver turns a city name into coordinates. Implemented by geocode.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, city string) (models.Location, error)
}

// Fetcher retrieves a forecast payload for coordinates and a mode.
// Implemented by forecast.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64, mode forecast.Mode) (models.Payload, error)
}

// Service runs the render pipeline: resolve the city, fetch current and
// historical payloads concurrently, and assemble the view model. Fetch
// failures degrade their tabs; only a failed resolution fails the render.
type Service struct {
	resolver Resolver
	fetcher  Fetcher
}

// NewService creates a Service with the provided dependencies.
func NewService(resolver Resolver, fetcher Fetcher) *Service {
	return &Service{resolver: resolver, fetcher: fetcher}
}

// Render produces the dashboard for a city. A city that cannot be resolved
// short-circuits the pipeline: no forecast fetches are issued and the error
// wraps geocode.ErrNotFound or geocode.ErrUpstream for the caller to map.
func (s *Service) Render(ctx context.Context, city string) (view.Dashboard, error) {
	start := time.Now()
	logger := loggerFromContext(ctx)

	loc, err := s.resolver.Resolve(ctx, city)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			observability.DashboardRendersTotal.WithLabelValues("not_found").Inc()
		} else {
			observability.DashboardRendersTotal.WithLabelValues("error").Inc()
		}
		return view.Dashboard{}, fmt.Errorf("resolve %s: %w", city, err)
	}

	var (
		wg                  sync.WaitGroup
		current, historical *models.Payload
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		current = s.fetch(ctx, loc, forecast.ModeCurrent)
	}()
	go func() {
		defer wg.Done()
		historical = s.fetch(ctx, loc, forecast.ModeHistorical)
	}()
	wg.Wait()

	result := "ok"
	if current == nil || historical == nil {
		result = "partial"
	}
	observability.DashboardRendersTotal.WithLabelValues(result).Inc()
	if logger != nil {
		logger.Debug("dashboard rendered",
			zap.String("city", city),
			zap.String("result", result),
			zap.Duration("duration", time.Since(start)))
	}
	return view.BuildDashboard(loc, current, historical), nil
}

// Warm runs the pipeline for a city without returning the view, so the
// geocode and forecast caches are populated ahead of user traffic.
func (s *Service) Warm(ctx context.Context, city string) error {
	_, err := s.Render(ctx, city)
	return err
}

// fetch runs one forecast fetch and maps failure to a nil payload. The
// affected tabs render warnings instead of failing the page.
func (s *Service) fetch(ctx context.Context, loc models.Location, mode forecast.Mode) *models.Payload {
	payload, err := s.fetcher.Fetch(ctx, loc.Latitude, loc.Longitude, mode)
	if err != nil {
		if logger := loggerFromContext(ctx); logger != nil {
			logger.Warn("forecast fetch failed",
				zap.String("mode", string(mode)),
				zap.Float64("lat", loc.Latitude),
				zap.Float64("lon", loc.Longitude),
				zap.Error(err))
		}
		return nil
	}
	return &payload
}

// loggerFromContext extracts a zap.Logger from request context if present.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}
