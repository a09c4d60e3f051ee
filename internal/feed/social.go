// Package feed aggregates disaster-scoped social-media reports and official
// updates, each memoized with a feed-specific TTL.
package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/disaster-response-hub/internal/cache"
	"github.com/couchcryptid/disaster-response-hub/internal/domain"
	"github.com/couchcryptid/disaster-response-hub/internal/observability"
)

// SocialSource produces the raw, unfiltered reports for a disaster.
type SocialSource interface {
	Reports(ctx context.Context, disasterID string) ([]domain.FeedItem, error)
}

// SocialMedia aggregates social-media reports for a disaster, filtered by
// tags and cached per (disaster, canonical tag set).
type SocialMedia struct {
	source  SocialSource
	store   cache.Store
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewSocialMedia creates the social-media aggregator.
func NewSocialMedia(source SocialSource, store cache.Store, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *SocialMedia {
	if ttl <= 0 {
		ttl = cache.SocialTTL
	}
	return &SocialMedia{
		source:  source,
		store:   store,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch returns the disaster's reports matching tags, in feed order. Never
// errors: an upstream failure degrades to an empty list with a Warn log.
func (s *SocialMedia) Fetch(ctx context.Context, disasterID string, tags []string) []domain.FeedItem {
	key := cache.Key("social", disasterID, cache.CanonicalTags(tags))

	var cached []domain.FeedItem
	if cache.GetJSON(s.store, key, &cached) {
		s.metrics.CacheLookups.WithLabelValues("social", "hit").Inc()
		return cached
	}
	s.metrics.CacheLookups.WithLabelValues("social", "miss").Inc()

	reports, err := s.source.Reports(ctx, disasterID)
	if err != nil {
		s.metrics.FeedFetches.WithLabelValues("social", "degraded").Inc()
		s.logger.Warn("social media fetch failed", "disaster_id", disasterID, "error", err)
		return []domain.FeedItem{}
	}
	s.metrics.FeedFetches.WithLabelValues("social", "success").Inc()

	filtered := make([]domain.FeedItem, 0, len(reports))
	for _, item := range reports {
		if domain.MatchesTags(item.Keywords, tags) {
			filtered = append(filtered, item)
		}
	}

	if ctx.Err() == nil {
		cache.SetJSON(s.store, key, filtered, s.ttl)
	}
	return filtered
}

// PriorityAlerts filters already-fetched items to those flagged urgent by
// content. Pure and uncached.
func PriorityAlerts(items []domain.FeedItem) []domain.FeedItem {
	return domain.DetectPriorityAlerts(items)
}
