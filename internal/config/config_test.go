package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMapboxToken     = "pk.test-token"
	testExtractionURL   = "https://ner.example.com/models/locations"
	testNominatimCustom = "https://nominatim.internal.example.com"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.ExtractionEnabled)
	assert.Empty(t, cfg.ExtractionURL)
	assert.Equal(t, 10*time.Second, cfg.ExtractionTimeout)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.NominatimBaseURL)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, time.Hour, cfg.GeocodeCacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.SocialCacheTTL)
	assert.Equal(t, time.Hour, cfg.OfficialCacheTTL)
	assert.Empty(t, cfg.OfficialSourceURLs)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("EXTRACTION_URL", testExtractionURL)
	t.Setenv("EXTRACTION_TOKEN", "hf_token")
	t.Setenv("EXTRACTION_TIMEOUT", "20s")
	t.Setenv("NOMINATIM_BASE_URL", testNominatimCustom)
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("GEOCODE_TIMEOUT", "2s")
	t.Setenv("GEOCODE_CACHE_TTL", "2h")
	t.Setenv("SOCIAL_CACHE_TTL", "10m")
	t.Setenv("OFFICIAL_CACHE_TTL", "45m")
	t.Setenv("OFFICIAL_SOURCE_URLS", "https://a.example.com/feed.xml, https://b.example.com/rss")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.ExtractionEnabled)
	assert.Equal(t, testExtractionURL, cfg.ExtractionURL)
	assert.Equal(t, "hf_token", cfg.ExtractionToken)
	assert.Equal(t, 20*time.Second, cfg.ExtractionTimeout)
	assert.Equal(t, testNominatimCustom, cfg.NominatimBaseURL)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 2*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, 2*time.Hour, cfg.GeocodeCacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.SocialCacheTTL)
	assert.Equal(t, 45*time.Minute, cfg.OfficialCacheTTL)
	assert.Equal(t, []string{"https://a.example.com/feed.xml", "https://b.example.com/rss"}, cfg.OfficialSourceURLs)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeGeocodeTimeout(t *testing.T) {
	t.Setenv("GEOCODE_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODE_TIMEOUT")
}

func TestLoad_InvalidSocialCacheTTL(t *testing.T) {
	t.Setenv("SOCIAL_CACHE_TTL", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOCIAL_CACHE_TTL")
}

func TestLoad_ExtractionEnabledWithoutURL(t *testing.T) {
	t.Setenv("EXTRACTION_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXTRACTION_URL")
}

func TestLoad_ExtractionURLImpliesEnabled(t *testing.T) {
	t.Setenv("EXTRACTION_URL", testExtractionURL)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.ExtractionEnabled)
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}
