package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/disaster-response-hub/internal/cache"
	"github.com/couchcryptid/disaster-response-hub/internal/observability"
)

// Sentinel is the reserved phrase stored and returned when no location could
// be determined, whether because the text names none or because the service
// was unavailable. It is distinct from the empty string so callers can tell
// "not yet attempted" from "attempted and failed".
const Sentinel = "location_not_found"

// LocationExtractor is the upstream capability the cached extractor wraps.
type LocationExtractor interface {
	ExtractLocation(ctx context.Context, text string) (string, error)
}

// Extractor memoizes extraction results, sentinel included, so a hot failing
// text cannot hammer the rate-limited extraction service inside one TTL
// window. Extract never returns an error.
type Extractor struct {
	client  LocationExtractor
	store   cache.Store
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewExtractor creates a cache-backed extractor. A nil client behaves as a
// permanently unavailable service and always yields the sentinel.
func NewExtractor(client LocationExtractor, store cache.Store, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Extractor {
	if ttl <= 0 {
		ttl = cache.ExtractionTTL
	}
	return &Extractor{
		client:  client,
		store:   store,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

// Extract returns the location phrase for text, or Sentinel when none could
// be determined.
func (e *Extractor) Extract(ctx context.Context, text string) string {
	key := cache.Key("extract", text)

	var cached string
	if cache.GetJSON(e.store, key, &cached) {
		e.metrics.CacheLookups.WithLabelValues("extraction", "hit").Inc()
		return cached
	}
	e.metrics.CacheLookups.WithLabelValues("extraction", "miss").Inc()

	location := e.resolve(ctx, text)

	// A cancelled or timed-out request yields a sentinel that says nothing
	// about the text itself; only results from a completed call are stored.
	if ctx.Err() == nil {
		cache.SetJSON(e.store, key, location, e.ttl)
	}
	return location
}

func (e *Extractor) resolve(ctx context.Context, text string) string {
	if e.client == nil {
		e.metrics.ExtractionRequests.WithLabelValues("sentinel").Inc()
		return Sentinel
	}

	location, err := e.client.ExtractLocation(ctx, text)
	if err != nil {
		e.metrics.ExtractionRequests.WithLabelValues("error").Inc()
		e.logger.Warn("location extraction failed", "error", err)
		return Sentinel
	}
	if location == "" {
		e.metrics.ExtractionRequests.WithLabelValues("sentinel").Inc()
		return Sentinel
	}

	e.metrics.ExtractionRequests.WithLabelValues("success").Inc()
	return location
}
