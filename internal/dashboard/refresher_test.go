package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubWarmer struct {
	calls  int
	cities []string
	err    error
}

func (w *stubWarmer) Warm(ctx context.Context, city string) error {
	w.calls++
	w.cities = append(w.cities, city)
	return w.err
}

// TestRefresher_Run verifies that a refresh run warms the configured city and
// swallows failures instead of panicking the scheduler goroutine.
func TestRefresher_Run(t *testing.T) {
	warmer := &stubWarmer{}
	r := NewRefresher(warmer, "Lviv", 10*time.Minute, time.Second, nil)

	r.run()
	if warmer.calls != 1 || warmer.cities[0] != "Lviv" {
		t.Errorf("warm calls = %v, want one for Lviv", warmer.cities)
	}

	warmer.err = errors.New("upstream down")
	r.run()
	if warmer.calls != 2 {
		t.Errorf("warm calls = %d, want 2", warmer.calls)
	}
}

// TestRefresher_Start_Disabled verifies that an empty city or non-positive
// interval disables scheduling without error.
func TestRefresher_Start_Disabled(t *testing.T) {
	warmer := &stubWarmer{}

	r := NewRefresher(warmer, "", 10*time.Minute, time.Second, nil)
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	r.Stop()

	r = NewRefresher(warmer, "Lviv", 0, time.Second, nil)
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	r.Stop()

	if warmer.calls != 0 {
		t.Errorf("warm calls = %d, want 0 when disabled", warmer.calls)
	}
}

// TestRefresher_StartStop verifies that an enabled refresher schedules and
// stops cleanly.
func TestRefresher_StartStop(t *testing.T) {
	r := NewRefresher(&stubWarmer{}, "Lviv", time.Hour, time.Second, nil)
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	r.Stop()
}
