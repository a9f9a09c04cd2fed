package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/avelychko/weather-dashboard/internal/cache"
	"github.com/avelychko/weather-dashboard/internal/models"
	"github.com/avelychko/weather-dashboard/internal/observability"
)

// Fetcher wraps a forecast Client with time-boxed memoization keyed by
// (lat, lon, mode), bounding upstream call volume under repeated UI
// interaction while keeping data acceptably fresh.
type Fetcher struct {
	client Client
	cache  cache.Cache
	ttl    time.Duration
}

// NewFetcher creates a Fetcher with the given client, cache, and TTL.
func NewFetcher(client Client, c cache.Cache, ttl time.Duration) *Fetcher {
	return &Fetcher{
		client: client,
		cache:  c,
		ttl:    ttl,
	}
}

// Fetch returns the weather payload for the coordinates and mode, consulting
// the cache first. Failed fetches are not cached; the next render retries.
func (f *Fetcher) Fetch(ctx context.Context, lat, lon float64, mode Mode) (models.Payload, error) {
	key := cacheKey(lat, lon, mode)
	logger := loggerFromContext(ctx)

	raw, ok, err := f.cache.Get(ctx, key)
	if err != nil {
		if logger != nil {
			logger.Warn("forecast cache get failed", zap.String("key", key), zap.Error(err))
		}
	} else if ok {
		var payload models.Payload
		if err := json.Unmarshal(raw, &payload); err == nil {
			observability.CacheHitsTotal.WithLabelValues("forecast").Inc()
			if logger != nil {
				logger.Debug("forecast cache hit", zap.String("key", key))
			}
			return payload, nil
		}
	}

	payload, err := f.client.Fetch(ctx, lat, lon, mode)
	if err != nil {
		return models.Payload{}, err
	}

	if raw, err := json.Marshal(payload); err == nil {
		if setErr := f.cache.Set(ctx, key, raw, f.ttl); setErr != nil && logger != nil {
			logger.Warn("forecast cache set failed", zap.String("key", key), zap.Error(setErr))
		}
	}
	return payload, nil
}

// cacheKey builds the cache key for a (lat, lon, mode) triple.
func cacheKey(lat, lon float64, mode Mode) string {
	return fmt.Sprintf("forecast:%s:%s:%s", formatCoord(lat), formatCoord(lon), mode)
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
