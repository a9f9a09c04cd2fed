package upstream

import (
	"sync"
	"time"
)

// Upstream targets tracked for health reporting.
const (
	TargetGeocoding = "geocoding"
	TargetForecast  = "forecast"
)

var defaultTracker = NewTracker()

// RecordSuccess records a successful call to the named upstream target.
func RecordSuccess(target string) {
	defaultTracker.RecordSuccess(target)
}

// RecordError records a failed call (transport error, non-2xx) to the named target.
func RecordError(target string) {
	defaultTracker.RecordError(target)
}

// ErrorRate returns (errorCount, totalCount) for the target within the window.
func ErrorRate(target string, window time.Duration) (errors, total int) {
	return defaultTracker.ErrorRate(target, window)
}

// Reset clears all recorded outcomes. For tests only.
func Reset() {
	defaultTracker.Reset()
}

// Tracker maintains sliding windows of call outcomes per upstream target.
// The health handler uses the per-target error rate to report degradation of the
// geocoding or forecast service without failing the dashboard itself.
type Tracker struct {
	mu      sync.Mutex
	targets map[string]*outcomes
}

type outcomes struct {
	successTimes []time.Time
	errorTimes   []time.Time
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{targets: make(map[string]*outcomes)}
}

// RecordSuccess records a successful call outcome for the target.
func (t *Tracker) RecordSuccess(target string) {
	t.record(target, false)
}

// RecordError records a failed call outcome for the target.
func (t *Tracker) RecordError(target string) {
	t.record(target, true)
}

func (t *Tracker) record(target string, isError bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o := t.targets[target]
	if o == nil {
		o = &outcomes{}
		t.targets[target] = o
	}
	now := time.Now()
	if isError {
		o.errorTimes = append(o.errorTimes, now)
	} else {
		o.successTimes = append(o.successTimes, now)
	}
	o.pruneLocked(now)
}

// ErrorRate returns (errorCount, totalCount) for the target within the window.
// A target with no recorded outcomes reports (0, 0).
func (t *Tracker) ErrorRate(target string, window time.Duration) (errors, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o := t.targets[target]
	if o == nil {
		return 0, 0
	}
	cutoff := time.Now().Add(-window)
	errCount := countInWindow(o.errorTimes, cutoff)
	successCount := countInWindow(o.successTimes, cutoff)
	return errCount, errCount + successCount
}

// Reset clears all recorded outcomes from the tracker.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.targets = make(map[string]*outcomes)
}

// MaxWindow bounds how far back outcomes are retained. ErrorRate queries for
// windows wider than this under-count; callers must clamp their window to it.
const MaxWindow = 10 * time.Minute

func (o *outcomes) pruneLocked(now time.Time) {
	cutoff := now.Add(-MaxWindow)
	o.successTimes = pruneBefore(o.successTimes, cutoff)
	o.errorTimes = pruneBefore(o.errorTimes, cutoff)
}

func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && times[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return times
	}
	return append(times[:0:0], times[i:]...)
}

func countInWindow(times []time.Time, cutoff time.Time) int {
	n := 0
	for _, ts := range times {
		if !ts.Before(cutoff) {
			n++
		}
	}
	return n
}
