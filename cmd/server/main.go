package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/disaster-response-hub/internal/cache"
	"github.com/couchcryptid/disaster-response-hub/internal/config"
	"github.com/couchcryptid/disaster-response-hub/internal/extract"
	"github.com/couchcryptid/disaster-response-hub/internal/feed"
	"github.com/couchcryptid/disaster-response-hub/internal/geocode"
	"github.com/couchcryptid/disaster-response-hub/internal/httpserver"
	"github.com/couchcryptid/disaster-response-hub/internal/hub"
	"github.com/couchcryptid/disaster-response-hub/internal/observability"
	"github.com/couchcryptid/disaster-response-hub/internal/store"
)

type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	kv := cache.NewMemory()

	// Location extraction (feature-flagged via EXTRACTION_ENABLED / EXTRACTION_URL).
	var extractClient extract.LocationExtractor
	if cfg.ExtractionEnabled {
		extractClient = extract.NewClient(cfg.ExtractionURL, cfg.ExtractionToken, cfg.ExtractionTimeout, logger)
		logger.Info("location extraction enabled", "url", cfg.ExtractionURL, "timeout", cfg.ExtractionTimeout)
	} else {
		logger.Info("location extraction disabled")
	}
	extractor := extract.NewExtractor(extractClient, kv, cache.ExtractionTTL, metrics, logger)

	// Geocoding provider chain: Nominatim always, Mapbox as fallback when configured.
	providers := []geocode.Provider{geocode.NewNominatim(cfg.NominatimBaseURL, cfg.GeocodeTimeout)}
	if cfg.MapboxEnabled {
		providers = append(providers, geocode.NewMapbox(cfg.MapboxToken, cfg.GeocodeTimeout))
		logger.Info("mapbox geocoding fallback enabled")
	}
	chain := geocode.NewChain(providers, metrics, logger)
	geocoder := geocode.NewService(extractor, chain, kv, cfg.GeocodeCacheTTL, metrics, logger)

	social := feed.NewSocialMedia(feed.NewMockSocialSource(), kv, cfg.SocialCacheTTL, metrics, logger)
	official := feed.NewOfficialUpdates(cfg.OfficialSourceURLs, cfg.GeocodeTimeout, kv, cfg.OfficialCacheTTL, metrics, logger)

	events := hub.New(metrics, logger)

	records := store.NewMemory()
	records.SeedDisaster(store.Disaster{
		ID:           "demo-flood",
		Title:        "Coastal Flooding",
		LocationName: "Lower Manhattan, New York",
		Description:  "Storm surge flooding across lower Manhattan.",
	})

	srv := httpserver.NewServer(cfg.HTTPAddr, httpserver.Deps{
		Geocoder:  geocoder,
		Social:    social,
		Official:  official,
		Disasters: records,
		Resources: records,
		Events:    events,
		Ready:     alwaysReady{},
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
