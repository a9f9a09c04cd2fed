package upstream

import (
	"testing"
	"time"
)

// TestTracker_ErrorRate verifies that ErrorRate counts successes and errors
// recorded within the window for the requested target only.
func TestTracker_ErrorRate(t *testing.T) {
	tr := NewTracker()

	tr.RecordSuccess(TargetGeocoding)
	tr.RecordSuccess(TargetGeocoding)
	tr.RecordError(TargetGeocoding)
	tr.RecordError(TargetForecast)

	errs, total := tr.ErrorRate(TargetGeocoding, time.Minute)
	if errs != 1 || total != 3 {
		t.Errorf("ErrorRate(geocoding) = (%d, %d), want (1, 3)", errs, total)
	}

	errs, total = tr.ErrorRate(TargetForecast, time.Minute)
	if errs != 1 || total != 1 {
		t.Errorf("ErrorRate(forecast) = (%d, %d), want (1, 1)", errs, total)
	}
}

// TestTracker_ErrorRate_UnknownTarget verifies that an untracked target
// reports zero outcomes rather than failing.
func TestTracker_ErrorRate_UnknownTarget(t *testing.T) {
	tr := NewTracker()

	errs, total := tr.ErrorRate("nothing", time.Minute)
	if errs != 0 || total != 0 {
		t.Errorf("ErrorRate(unknown) = (%d, %d), want (0, 0)", errs, total)
	}
}

// TestTracker_Reset verifies that Reset clears all recorded outcomes.
func TestTracker_Reset(t *testing.T) {
	tr := NewTracker()
	tr.RecordError(TargetForecast)
	tr.Reset()

	errs, total := tr.ErrorRate(TargetForecast, time.Minute)
	if errs != 0 || total != 0 {
		t.Errorf("ErrorRate after Reset = (%d, %d), want (0, 0)", errs, total)
	}
}
