package geocode

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/avelychko/weather-dashboard/internal/cache"
	"github.com/avelychko/weather-dashboard/internal/models"
)

type countingClient struct {
	loc   models.Location
	err   error
	calls int
}

func (c *countingClient) Lookup(ctx context.Context, city string) (models.Location, error) {
	c.calls++
	if c.err != nil {
		return models.Location{}, c.err
	}
	return c.loc, nil
}

// TestResolver_Resolve_CachesWithinTTL verifies that repeated identical lookups
// within the cache window issue at most one outbound geocoding request.
func TestResolver_Resolve_CachesWithinTTL(t *testing.T) {
	ctx := context.Background()
	client := &countingClient{loc: models.Location{Name: "Lviv", Latitude: 49.84, Longitude: 24.03, Country: "Ukraine"}}
	r := NewResolver(client, cache.NewInMemoryCache(), time.Hour)

	for i := 0; i < 5; i++ {
		loc, err := r.Resolve(ctx, "Lviv")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if loc.Latitude != 49.84 || loc.Longitude != 24.03 {
			t.Fatalf("Resolve() = %+v, want Lviv coordinates", loc)
		}
	}

	if client.calls != 1 {
		t.Errorf("outbound calls = %d, want 1", client.calls)
	}
}

// TestResolver_Resolve_KeyNormalization verifies that lookups differing only in
// case and surrounding whitespace share one cache entry.
func TestResolver_Resolve_KeyNormalization(t *testing.T) {
	ctx := context.Background()
	client := &countingClient{loc: models.Location{Name: "Lviv", Latitude: 49.84, Longitude: 24.03}}
	r := NewResolver(client, cache.NewInMemoryCache(), time.Hour)

	for _, city := range []string{"Lviv", " lviv ", "LVIV"} {
		if _, err := r.Resolve(ctx, city); err != nil {
			t.Fatalf("Resolve(%q) error = %v", city, err)
		}
	}

	if client.calls != 1 {
		t.Errorf("outbound calls = %d, want 1 for normalized variants", client.calls)
	}
}

// TestResolver_Resolve_ExpiryForcesRefetch verifies that a lookup after the
// TTL elapses goes back upstream.
func TestResolver_Resolve_ExpiryForcesRefetch(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	client := &countingClient{loc: models.Location{Name: "Lviv", Latitude: 49.84}}
	r := NewResolver(client, cache.NewInMemoryCacheWithClock(func() time.Time { return now }), time.Hour)

	if _, err := r.Resolve(ctx, "Lviv"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	now = now.Add(2 * time.Hour)
	if _, err := r.Resolve(ctx, "Lviv"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if client.calls != 2 {
		t.Errorf("outbound calls = %d, want 2 after expiry", client.calls)
	}
}

// TestResolver_Resolve_NotFoundNotCached verifies that ErrNotFound propagates
// and is not cached, so the next lookup retries upstream.
func TestResolver_Resolve_NotFoundNotCached(t *testing.T) {
	ctx := context.Background()
	client := &countingClient{err: fmt.Errorf("%w: xyzzy", ErrNotFound)}
	r := NewResolver(client, cache.NewInMemoryCache(), time.Hour)

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(ctx, "xyzzy")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Resolve() error = %v, want ErrNotFound", err)
		}
	}

	if client.calls != 2 {
		t.Errorf("outbound calls = %d, want 2 (failures not cached)", client.calls)
	}
}
