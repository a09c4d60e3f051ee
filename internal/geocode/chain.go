package geocode

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/disaster-response-hub/internal/domain"
	"github.com/couchcryptid/disaster-response-hub/internal/observability"
)

// Chain tries providers in order and short-circuits on the first usable
// result, so a single query never mixes coordinate precision across
// providers. A provider error or empty result both mean "try the next one";
// exhausting the chain means the location is unresolvable right now.
type Chain struct {
	providers []Provider
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewChain creates a fallback resolver over the given providers.
func NewChain(providers []Provider, metrics *observability.Metrics, logger *slog.Logger) *Chain {
	return &Chain{
		providers: providers,
		metrics:   metrics,
		logger:    logger,
	}
}

// Resolve returns the first provider's first candidate, or ok=false when
// every provider failed or returned nothing.
func (c *Chain) Resolve(ctx context.Context, location string) (domain.Coordinates, bool) {
	for i, p := range c.providers {
		start := time.Now()
		coords, ok, err := p.Geocode(ctx, location)
		c.metrics.GeocodeAPIDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())

		if err != nil {
			c.metrics.GeocodeRequests.WithLabelValues(p.Name(), "error").Inc()
			c.logger.Warn("geocoding provider unusable, falling back",
				"provider", p.Name(),
				"location", location,
				"error", err,
			)
			continue
		}
		if !ok {
			c.metrics.GeocodeRequests.WithLabelValues(p.Name(), "empty").Inc()
			continue
		}

		c.metrics.GeocodeRequests.WithLabelValues(p.Name(), "success").Inc()
		c.metrics.FallbackDepth.Observe(float64(i + 1))
		return coords, true
	}

	c.metrics.FallbackDepth.Observe(float64(len(c.providers)))
	return domain.Coordinates{}, false
}
