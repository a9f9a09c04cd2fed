package dashboard

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/avelychko/weather-dashboard/internal/observability"
)

// Warmer is implemented by Service. Separate interface so tests can observe
// refresh runs without a full pipeline.
type Warmer interface {
	Warm(ctx context.Context, city string) error
}

// Refresher keeps the default city's caches populated by re-running the
// pipeline on a fixed schedule, so the first visitor after a quiet period
// still gets a warm render.
type Refresher struct {
	scheduler *gocron.Scheduler
	warmer    Warmer
	city      string
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// NewRefresher creates a Refresher for the given city and interval.
func NewRefresher(warmer Warmer, city string, interval, timeout time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{
		scheduler: gocron.NewScheduler(time.UTC),
		warmer:    warmer,
		city:      city,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the periodic refresh and starts the underlying scheduler.
func (r *Refresher) Start() error {
	if r.city == "" || r.interval <= 0 {
		if r.logger != nil {
			r.logger.Info("cache refresher disabled")
		}
		return nil
	}

	_, err := r.scheduler.Every(r.interval).Do(r.run)
	if err != nil {
		return err
	}
	r.scheduler.StartAsync()
	if r.logger != nil {
		r.logger.Info("cache refresher started",
			zap.String("city", r.city),
			zap.Duration("interval", r.interval))
	}
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (r *Refresher) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}

func (r *Refresher) run() {
	start := time.Now()
	observability.CacheWarmingTotal.Inc()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	err := r.warmer.Warm(ctx, r.city)
	duration := time.Since(start)
	observability.CacheWarmingDurationSeconds.Observe(duration.Seconds())
	if err != nil {
		observability.CacheWarmingErrorsTotal.Inc()
		if r.logger != nil {
			r.logger.Warn("cache refresh failed", zap.String("city", r.city), zap.Error(err))
		}
		return
	}
	if r.logger != nil {
		r.logger.Debug("cache refresh complete",
			zap.String("city", r.city),
			zap.Duration("duration", duration))
	}
}
