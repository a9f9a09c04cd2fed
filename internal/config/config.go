package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/avelychko/weather-dashboard/internal/upstream"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string `validate:"required"`

	GeocodingURL    string        `validate:"required,url"`
	ForecastURL     string        `validate:"required,url"`
	UpstreamTimeout time.Duration `validate:"gt=0"`

	RequestTimeout time.Duration `validate:"gt=0"`

	GeocodeTTL   time.Duration `validate:"gt=0"`
	ForecastTTL  time.Duration `validate:"gt=0"`
	CacheBackend string        `validate:"oneof=in_memory memcached"`

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	DefaultCity     string `validate:"required"`
	WarmDefaultCity bool
	WarmInterval    time.Duration
	CityMaxLength   int `validate:"gt=0"`

	DegradedWindow   time.Duration `validate:"gt=0"`
	DegradedErrorPct int           `validate:"gt=0,lte=100"`

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	GeocodingAPI struct {
		URL string `yaml:"url"`
	} `yaml:"geocoding_api"`

	ForecastAPI struct {
		URL string `yaml:"url"`
	} `yaml:"forecast_api"`

	Upstream struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"upstream"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Cache struct {
		Backend     string `yaml:"backend"`
		GeocodeTTL  string `yaml:"geocode_ttl"`
		ForecastTTL string `yaml:"forecast_ttl"`
		Memcached   struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"cache"`

	Dashboard struct {
		DefaultCity   string `yaml:"default_city"`
		WarmOnStart   *bool  `yaml:"warm_on_start"`
		WarmInterval  string `yaml:"warm_interval"`
		CityMaxLength int    `yaml:"city_max_length"`
	} `yaml:"dashboard"`

	Health struct {
		DegradedWindow   string `yaml:"degraded_window"`
		DegradedErrorPct int    `yaml:"degraded_error_pct"`
	} `yaml:"health"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`
}

var validate = validator.New()

// Load reads configuration from config/{ENV_NAME}.yaml (default dev), with a
// best-effort .env load first and environment variables taking precedence over
// the file. A missing config file is not an error; defaults apply. Call from
// the project root.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	var fc fileConfig
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return build(&fc)
}

// build assembles a Config from the parsed file, applying env overrides and defaults.
func build(fc *fileConfig) (*Config, error) {
	cfg := &Config{}

	cfg.ServerPort = firstNonEmpty(os.Getenv("SERVER_PORT"), fc.Server.Port, "8080")

	cfg.GeocodingURL = firstNonEmpty(os.Getenv("GEOCODING_API_URL"), fc.GeocodingAPI.URL,
		"https://geocoding-api.open-meteo.com/v1/search")
	cfg.ForecastURL = firstNonEmpty(os.Getenv("FORECAST_API_URL"), fc.ForecastAPI.URL,
		"https://api.open-meteo.com/v1/forecast")
	cfg.UpstreamTimeout = parseDuration(fc.Upstream.Timeout, 5*time.Second)

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 15*time.Second)

	cfg.GeocodeTTL = parseDuration(fc.Cache.GeocodeTTL, time.Hour)
	cfg.ForecastTTL = parseDuration(fc.Cache.ForecastTTL, 10*time.Minute)
	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(firstNonEmpty(os.Getenv("CACHE_BACKEND"), fc.Cache.Backend, "in_memory")))

	cfg.MemcachedAddrs = firstNonEmpty(strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS")), strings.TrimSpace(fc.Cache.Memcached.Addrs), "localhost:11211")
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.DefaultCity = firstNonEmpty(os.Getenv("DEFAULT_CITY"), fc.Dashboard.DefaultCity, "Lviv")
	cfg.WarmDefaultCity = true
	if fc.Dashboard.WarmOnStart != nil {
		cfg.WarmDefaultCity = *fc.Dashboard.WarmOnStart
	}
	cfg.WarmInterval = parseDurationOrZero(fc.Dashboard.WarmInterval, 0)
	cfg.CityMaxLength = fc.Dashboard.CityMaxLength
	if cfg.CityMaxLength <= 0 {
		cfg.CityMaxLength = 100
	}

	cfg.DegradedWindow = parseDuration(fc.Health.DegradedWindow, 60*time.Second)
	// Outcomes are only retained for upstream.MaxWindow; a wider window would
	// silently under-count.
	if cfg.DegradedWindow > upstream.MaxWindow {
		cfg.DegradedWindow = upstream.MaxWindow
	}
	cfg.DegradedErrorPct = fc.Health.DegradedErrorPct
	if cfg.DegradedErrorPct <= 0 {
		cfg.DegradedErrorPct = 50
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	// The per-request deadline must cover both upstream calls run back to back.
	if cfg.RequestTimeout <= cfg.UpstreamTimeout {
		cfg.RequestTimeout = 2*cfg.UpstreamTimeout + time.Second
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseDuration parses a duration string and returns defaultVal if parsing fails
// or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty
// string or parse error. Zero and negative durations are returned as-is.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}
