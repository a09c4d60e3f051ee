package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Location extraction (named-entity recognition) service.
	ExtractionURL     string
	ExtractionToken   string
	ExtractionEnabled bool
	ExtractionTimeout time.Duration

	// Geocoding provider chain configuration.
	NominatimBaseURL string
	MapboxToken      string
	MapboxEnabled    bool
	GeocodeTimeout   time.Duration

	// Cache TTLs.
	GeocodeCacheTTL  time.Duration
	SocialCacheTTL   time.Duration
	OfficialCacheTTL time.Duration

	// Official-updates live scraping sources (RSS/Atom URLs). Empty disables
	// the live path; mock updates are always available.
	OfficialSourceURLs []string
}

// LoggerLevel implements observability.LoggerConfig.
func (c *Config) LoggerLevel() string { return c.LogLevel }

// LoggerFormat implements observability.LoggerConfig.
func (c *Config) LoggerFormat() string { return c.LogFormat }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	extractionTimeout, err := parseDuration("EXTRACTION_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	geocodeTTL, err := parseDuration("GEOCODE_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	socialTTL, err := parseDuration("SOCIAL_CACHE_TTL", "30m")
	if err != nil {
		return nil, err
	}

	officialTTL, err := parseDuration("OFFICIAL_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	extractionURL := os.Getenv("EXTRACTION_URL")
	extractionEnabled := extractionURL != ""
	if v := os.Getenv("EXTRACTION_ENABLED"); v != "" {
		extractionEnabled = v == "true"
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ExtractionURL:     extractionURL,
		ExtractionToken:   os.Getenv("EXTRACTION_TOKEN"),
		ExtractionEnabled: extractionEnabled,
		ExtractionTimeout: extractionTimeout,

		NominatimBaseURL: envOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		MapboxToken:      mapboxToken,
		MapboxEnabled:    mapboxEnabled,
		GeocodeTimeout:   geocodeTimeout,

		GeocodeCacheTTL:  geocodeTTL,
		SocialCacheTTL:   socialTTL,
		OfficialCacheTTL: officialTTL,

		OfficialSourceURLs: parseList(os.Getenv("OFFICIAL_SOURCE_URLS")),
	}

	if cfg.ExtractionEnabled && cfg.ExtractionURL == "" {
		return nil, errors.New("EXTRACTION_ENABLED is true but EXTRACTION_URL is not set")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.NominatimBaseURL == "" {
		return nil, errors.New("NOMINATIM_BASE_URL is required")
	}

	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func parseDuration(name, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(name, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
