package geocode

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avelychko/weather-dashboard/internal/cache"
	"github.com/avelychko/weather-dashboard/internal/models"
	"github.com/avelychko/weather-dashboard/internal/observability"
)

// Resolver wraps a geocoding Client with time-boxed memoization, cache-aside.
// Coordinates rarely change, so repeated identical lookups within the TTL issue
// at most one outbound call. Only successful resolutions are cached; NotFound
// and transport failures go back upstream on the next render.
type Resolver struct {
	client Client
	cache  cache.Cache
	ttl    time.Duration
}

// NewResolver creates a Resolver with the given client, cache, and TTL.
func NewResolver(client Client, c cache.Cache, ttl time.Duration) *Resolver {
	return &Resolver{
		client: client,
		cache:  c,
		ttl:    ttl,
	}
}

// Resolve returns the Location for a city, consulting the cache first.
func (r *Resolver) Resolve(ctx context.Context, city string) (models.Location, error) {
	key := "geo:" + normalizeCity(city)
	logger := loggerFromContext(ctx)

	raw, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		if logger != nil {
			logger.Warn("geocode cache get failed", zap.String("city", city), zap.Error(err))
		}
	} else if ok {
		var loc models.Location
		if err := json.Unmarshal(raw, &loc); err == nil {
			observability.CacheHitsTotal.WithLabelValues("geocode").Inc()
			if logger != nil {
				logger.Debug("geocode cache hit", zap.String("city", city))
			}
			return loc, nil
		}
		// Corrupt entry; fall through to a fresh lookup that overwrites it.
	}

	loc, err := r.client.Lookup(ctx, city)
	if err != nil {
		return models.Location{}, err
	}

	if raw, err := json.Marshal(loc); err == nil {
		if setErr := r.cache.Set(ctx, key, raw, r.ttl); setErr != nil && logger != nil {
			logger.Warn("geocode cache set failed", zap.String("city", city), zap.Error(setErr))
		}
	}
	return loc, nil
}

// normalizeCity normalizes city names by trimming whitespace and lowercasing,
// so cache keys are consistent regardless of input format.
func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
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
