package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/avelychko/weather-dashboard/internal/upstream"
)

// TestBuild_Defaults verifies that an empty file config yields the documented
// defaults after env overrides are cleared.
func TestBuild_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := build(&fileConfig{})
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.GeocodingURL != "https://geocoding-api.open-meteo.com/v1/search" {
		t.Errorf("GeocodingURL = %q", cfg.GeocodingURL)
	}
	if cfg.ForecastURL != "https://api.open-meteo.com/v1/forecast" {
		t.Errorf("ForecastURL = %q", cfg.ForecastURL)
	}
	if cfg.GeocodeTTL != time.Hour {
		t.Errorf("GeocodeTTL = %v, want 1h", cfg.GeocodeTTL)
	}
	if cfg.ForecastTTL != 10*time.Minute {
		t.Errorf("ForecastTTL = %v, want 10m", cfg.ForecastTTL)
	}
	if cfg.CacheBackend != "in_memory" {
		t.Errorf("CacheBackend = %q, want in_memory", cfg.CacheBackend)
	}
	if cfg.DefaultCity != "Lviv" {
		t.Errorf("DefaultCity = %q, want Lviv", cfg.DefaultCity)
	}
	if !cfg.WarmDefaultCity {
		t.Error("WarmDefaultCity = false, want true")
	}
	if cfg.CityMaxLength != 100 {
		t.Errorf("CityMaxLength = %d, want 100", cfg.CityMaxLength)
	}
	if cfg.RequestTimeout <= cfg.UpstreamTimeout {
		t.Errorf("RequestTimeout %v must exceed UpstreamTimeout %v", cfg.RequestTimeout, cfg.UpstreamTimeout)
	}
}

// TestBuild_EnvOverrides verifies that environment variables take precedence
// over file values.
func TestBuild_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_BACKEND", "memcached")
	t.Setenv("DEFAULT_CITY", "Kyiv")

	fc := &fileConfig{}
	fc.Server.Port = "8081"
	fc.Dashboard.DefaultCity = "Odesa"

	cfg, err := build(fc)
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want env override 9090", cfg.ServerPort)
	}
	if cfg.CacheBackend != "memcached" {
		t.Errorf("CacheBackend = %q, want memcached", cfg.CacheBackend)
	}
	if cfg.DefaultCity != "Kyiv" {
		t.Errorf("DefaultCity = %q, want Kyiv", cfg.DefaultCity)
	}
}

// TestBuild_InvalidBackend verifies that an unsupported cache backend fails
// struct validation.
func TestBuild_InvalidBackend(t *testing.T) {
	clearEnv(t)

	fc := &fileConfig{}
	fc.Cache.Backend = "redis"

	if _, err := build(fc); err == nil {
		t.Fatal("build() error = nil, want validation error for backend")
	}
}

// TestBuild_DegradedWindowClamped verifies that a degraded window wider than
// the tracker's retention bound is clamped, so the health check never queries
// outcomes that were already pruned.
func TestBuild_DegradedWindowClamped(t *testing.T) {
	clearEnv(t)

	fc := &fileConfig{}
	fc.Health.DegradedWindow = "1h"

	cfg, err := build(fc)
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	if cfg.DegradedWindow != upstream.MaxWindow {
		t.Errorf("DegradedWindow = %v, want clamped to %v", cfg.DegradedWindow, upstream.MaxWindow)
	}

	fc.Health.DegradedWindow = "2m"
	cfg, err = build(fc)
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	if cfg.DegradedWindow != 2*time.Minute {
		t.Errorf("DegradedWindow = %v, want 2m unchanged", cfg.DegradedWindow)
	}
}

// chdir changes the working directory for the duration of the test,
// restoring the original directory on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Error(err)
		}
	})
}

// TestLoad_MissingFileUsesDefaults verifies that Load succeeds without a
// config file, falling back to defaults.
func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultCity != "Lviv" {
		t.Errorf("DefaultCity = %q, want Lviv", cfg.DefaultCity)
	}
}

// TestLoad_ReadsYAML verifies that Load parses the environment-named YAML file.
func TestLoad_ReadsYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yamlBody := []byte("server:\n  port: \"7070\"\ncache:\n  forecast_ttl: 5m\ndashboard:\n  default_city: Ternopil\n")
	if err := os.WriteFile(filepath.Join(dir, "config", "dev.yaml"), yamlBody, 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "7070" {
		t.Errorf("ServerPort = %q, want 7070", cfg.ServerPort)
	}
	if cfg.ForecastTTL != 5*time.Minute {
		t.Errorf("ForecastTTL = %v, want 5m", cfg.ForecastTTL)
	}
	if cfg.DefaultCity != "Ternopil" {
		t.Errorf("DefaultCity = %q, want Ternopil", cfg.DefaultCity)
	}
}

// TestParseDuration verifies fallback behavior for empty, invalid, and
// non-positive duration strings.
func TestParseDuration(t *testing.T) {
	tests := []struct {
		name string
		in   string
		def  time.Duration
		want time.Duration
	}{
		{name: "valid", in: "30s", def: time.Minute, want: 30 * time.Second},
		{name: "empty uses default", in: "", def: time.Minute, want: time.Minute},
		{name: "garbage uses default", in: "soon", def: time.Minute, want: time.Minute},
		{name: "negative uses default", in: "-5s", def: time.Minute, want: time.Minute},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseDuration(tc.in, tc.def); got != tc.want {
				t.Errorf("parseDuration(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ENV_NAME", "SERVER_PORT", "GEOCODING_API_URL", "FORECAST_API_URL", "CACHE_BACKEND", "MEMCACHED_ADDRS", "DEFAULT_CITY"} {
		t.Setenv(key, "")
	}
}
