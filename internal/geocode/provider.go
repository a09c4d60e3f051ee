// Package geocode resolves location text to coordinates through an ordered
// chain of fallback providers, with successful resolutions memoized in the
// shared cache.
package geocode

import (
	"context"

	"github.com/couchcryptid/disaster-response-hub/internal/domain"
)

// Provider is one geocoding upstream in the fallback chain.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Geocode resolves location text to coordinates. ok=false means the
	// provider returned no candidate; an error means the provider was
	// unusable (misconfigured, timed out, transient failure). The chain
	// treats both the same way and moves on.
	Geocode(ctx context.Context, location string) (coords domain.Coordinates, ok bool, err error)
}
