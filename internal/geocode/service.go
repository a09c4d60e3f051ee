package geocode

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/disaster-response-hub/internal/cache"
	"github.com/couchcryptid/disaster-response-hub/internal/domain"
	"github.com/couchcryptid/disaster-response-hub/internal/extract"
	"github.com/couchcryptid/disaster-response-hub/internal/observability"
)

// TextExtractor produces a location phrase (or the extraction sentinel) from
// free text.
type TextExtractor interface {
	Extract(ctx context.Context, text string) string
}

// Resolver turns a location phrase into coordinates, absent on failure.
type Resolver interface {
	Resolve(ctx context.Context, location string) (domain.Coordinates, bool)
}

// Service composes extraction and the fallback resolver into the single
// "text to coordinates" pipeline backing the geocode endpoint.
type Service struct {
	extractor TextExtractor
	resolver  Resolver
	store     cache.Store
	ttl       time.Duration
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewService creates the geocoding aggregator.
func NewService(extractor TextExtractor, resolver Resolver, store cache.Store, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = cache.GeocodeTTL
	}
	return &Service{
		extractor: extractor,
		resolver:  resolver,
		store:     store,
		ttl:       ttl,
		metrics:   metrics,
		logger:    logger,
	}
}

// Geocode resolves a query to coordinates. An explicit location skips
// extraction; a description that extracts to the sentinel fails fast with
// ExtractionError before any provider is consulted. Only successful
// resolutions are cached, so a transient provider outage never poisons the
// TTL window for retries.
func (s *Service) Geocode(ctx context.Context, query domain.GeocodeQuery) (domain.GeocodeResult, error) {
	var location string
	switch {
	case query.Explicit():
		location = query.Text()
	default:
		location = s.extractor.Extract(ctx, query.Text())
		if location == extract.Sentinel {
			return domain.GeocodeResult{}, &domain.ExtractionError{Description: query.Text()}
		}
	}

	key := cache.Key("geocode", location)

	var cached domain.GeocodeResult
	if cache.GetJSON(s.store, key, &cached) {
		s.metrics.CacheLookups.WithLabelValues("geocode", "hit").Inc()
		return cached, nil
	}
	s.metrics.CacheLookups.WithLabelValues("geocode", "miss").Inc()

	coords, ok := s.resolver.Resolve(ctx, location)
	if !ok {
		return domain.GeocodeResult{}, &domain.GeocodeError{Location: location}
	}

	result := domain.GeocodeResult{Location: location, Coordinates: coords}

	// Abandoned requests must not write partial state.
	if ctx.Err() != nil {
		return domain.GeocodeResult{}, ctx.Err()
	}
	cache.SetJSON(s.store, key, result, s.ttl)

	return result, nil
}
