package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/avelychko/weather-dashboard/internal/cache"
	"github.com/avelychko/weather-dashboard/internal/config"
	"github.com/avelychko/weather-dashboard/internal/dashboard"
	"github.com/avelychko/weather-dashboard/internal/forecast"
	"github.com/avelychko/weather-dashboard/internal/geocode"
	"github.com/avelychko/weather-dashboard/internal/httpapi"
	"github.com/avelychko/weather-dashboard/internal/observability"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	var cacheSvc cache.Cache
	var memcacheCloser *cache.MemcachedCache
	switch cfg.CacheBackend {
	case "memcached":
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached cache", zap.Error(err))
		}
		memcacheCloser = mc
		cacheSvc = mc
		logger.Info("cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	default:
		cacheSvc = cache.NewInMemoryCache()
		logger.Info("cache backend: in_memory")
	}

	resolver := geocode.NewResolver(
		geocode.NewOpenMeteoClient(cfg.GeocodingURL, cfg.UpstreamTimeout),
		cacheSvc, cfg.GeocodeTTL,
	)
	fetcher := forecast.NewFetcher(
		forecast.NewOpenMeteoClient(cfg.ForecastURL, cfg.UpstreamTimeout),
		cacheSvc, cfg.ForecastTTL,
	)
	dashboardService := dashboard.NewService(resolver, fetcher)

	if cfg.WarmDefaultCity && cfg.DefaultCity != "" {
		warmCtx, warmCancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := dashboardService.Warm(warmCtx, cfg.DefaultCity); err != nil {
			logger.Warn("startup cache warm failed", zap.String("city", cfg.DefaultCity), zap.Error(err))
		}
		warmCancel()
	}

	var refresher *dashboard.Refresher
	if cfg.WarmInterval > 0 {
		refresher = dashboard.NewRefresher(dashboardService, cfg.DefaultCity, cfg.WarmInterval, 30*time.Second, logger)
		if err := refresher.Start(); err != nil {
			logger.Error("cache refresher", zap.Error(err))
		}
	}

	healthConfig := &httpapi.HealthConfig{
		DegradedWindow:   cfg.DegradedWindow,
		DegradedErrorPct: cfg.DegradedErrorPct,
	}
	if memcacheCloser != nil {
		healthConfig.CachePing = memcacheCloser.Ping
	}
	handler := httpapi.NewHandler(dashboardService, cfg.DefaultCity, cfg.CityMaxLength, healthConfig, logger)

	router := mux.NewRouter()
	router.Use(httpapi.CorrelationIDMiddleware(logger))
	router.Use(httpapi.MetricsMiddleware)
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	router.HandleFunc("/", handler.GetIndex).Methods("GET")
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(httpapi.TimeoutMiddleware(cfg.RequestTimeout))
	apiRouter.HandleFunc("/dashboard", handler.GetDashboard).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	httpapi.SetShuttingDown(true)
	if refresher != nil {
		refresher.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httpapi.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httpapi.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httpapi.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	if memcacheCloser != nil {
		if err := memcacheCloser.Close(); err != nil {
			logger.Error("memcached close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
