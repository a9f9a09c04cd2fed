package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Geocoding API call rate by status. Watch for: error vs success ratio.
	GeocodeCallsTotal *prometheus.CounterVec

	// Geocoding API latency per request.
	GeocodeDuration *prometheus.HistogramVec

	// Forecast API call rate by mode (current, historical) and status.
	ForecastCallsTotal *prometheus.CounterVec

	// Forecast API latency per request by mode.
	ForecastDuration *prometheus.HistogramVec

	// Cache hits by cache type (geocode, forecast). Hit rate = hits/(hits+upstream calls).
	CacheHitsTotal *prometheus.CounterVec

	// Dashboard renders by result (ok, partial, not_found, error). Watch for: traffic volume, rate() for QPS.
	DashboardRendersTotal *prometheus.CounterVec

	// Cache warming runs for the default city.
	CacheWarmingTotal prometheus.Counter

	// Cache warming runs that failed.
	CacheWarmingErrorsTotal prometheus.Counter

	// Cache warming duration per run.
	CacheWarmingDurationSeconds prometheus.Histogram
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	GeocodeCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocodeCallsTotal",
			Help: "Total number of geocoding API calls",
		},
		[]string{"status"},
	)
	GeocodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geocodeDurationSeconds",
			Help:    "Geocoding API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	ForecastCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastCallsTotal",
			Help: "Total number of forecast API calls",
		},
		[]string{"mode", "status"},
	)
	ForecastDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forecastDurationSeconds",
			Help:    "Forecast API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"mode", "status"},
	)
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheHitsTotal",
			Help: "Total number of cache hits by cache type",
		},
		[]string{"cacheType"},
	)
	DashboardRendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboardRendersTotal",
			Help: "Dashboard render pipeline executions by result",
		},
		[]string{"result"},
	)
	CacheWarmingTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cacheWarmingTotal",
			Help: "Total number of default-city cache warming runs",
		},
	)
	CacheWarmingErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cacheWarmingErrorsTotal",
			Help: "Total number of failed cache warming runs",
		},
	)
	CacheWarmingDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cacheWarmingDurationSeconds",
			Help:    "Cache warming duration in seconds (per run)",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		GeocodeCallsTotal, GeocodeDuration,
		ForecastCallsTotal, ForecastDuration,
		CacheHitsTotal, DashboardRendersTotal,
		CacheWarmingTotal, CacheWarmingErrorsTotal, CacheWarmingDurationSeconds,
	)
}

// MetricsHandler returns the HTTP handler for the /metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
