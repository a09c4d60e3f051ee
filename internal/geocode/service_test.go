package geocode

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/disaster-response-hub/internal/cache"
	"github.com/couchcryptid/disaster-response-hub/internal/domain"
	"github.com/couchcryptid/disaster-response-hub/internal/extract"
	"github.com/couchcryptid/disaster-response-hub/internal/observability"
)

// --- mocks ---

type fakeExtractor struct {
	result string
	calls  int
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) string {
	f.calls++
	return f.result
}

type fakeResolver struct {
	coords domain.Coordinates
	ok     bool
	calls  int
}

func (f *fakeResolver) Resolve(_ context.Context, _ string) (domain.Coordinates, bool) {
	f.calls++
	return f.coords, f.ok
}

func newService(e TextExtractor, r Resolver) *Service {
	return NewService(e, r, cache.NewMemory(), time.Hour, observability.NewMetricsForTesting(), discardLogger())
}

// --- tests ---

func TestService_DescriptionEndToEnd(t *testing.T) {
	extractor := &fakeExtractor{result: "Wall Street"}
	resolver := &fakeResolver{coords: domain.Coordinates{Lat: 40.7061, Lon: -74.0088}, ok: true}
	s := newService(extractor, resolver)

	result, err := s.Geocode(context.Background(), domain.ByDescription("Heavy flooding near Wall Street"))
	require.NoError(t, err)

	assert.Equal(t, "Wall Street", result.Location)
	assert.Equal(t, domain.Coordinates{Lat: 40.7061, Lon: -74.0088}, result.Coordinates)
}

func TestService_SecondIdenticalCallHitsCache(t *testing.T) {
	extractor := &fakeExtractor{result: "Wall Street"}
	resolver := &fakeResolver{coords: domain.Coordinates{Lat: 40.7061, Lon: -74.0088}, ok: true}
	s := newService(extractor, resolver)

	_, err := s.Geocode(context.Background(), domain.ByDescription("Heavy flooding near Wall Street"))
	require.NoError(t, err)
	result, err := s.Geocode(context.Background(), domain.ByDescription("Heavy flooding near Wall Street"))
	require.NoError(t, err)

	assert.Equal(t, "Wall Street", result.Location)
	assert.Equal(t, 1, resolver.calls, "second identical call within the TTL makes zero provider calls")
}

func TestService_ExplicitLocationSkipsExtraction(t *testing.T) {
	extractor := &fakeExtractor{result: "should not be used"}
	resolver := &fakeResolver{coords: domain.Coordinates{Lat: 1, Lon: 2}, ok: true}
	s := newService(extractor, resolver)

	result, err := s.Geocode(context.Background(), domain.ByLocation("Manila"))
	require.NoError(t, err)

	assert.Equal(t, "Manila", result.Location)
	assert.Equal(t, 0, extractor.calls)
}

func TestService_SentinelFailsFastBeforeProviders(t *testing.T) {
	extractor := &fakeExtractor{result: extract.Sentinel}
	resolver := &fakeResolver{ok: true}
	s := newService(extractor, resolver)

	_, err := s.Geocode(context.Background(), domain.ByDescription("no location in this text"))

	var extractionErr *domain.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "no location in this text", extractionErr.Description)
	assert.Equal(t, 0, resolver.calls, "no point geocoding a sentinel")
}

func TestService_GeocodeErrorCarriesLocation(t *testing.T) {
	extractor := &fakeExtractor{result: "Atlantis"}
	resolver := &fakeResolver{ok: false}
	s := newService(extractor, resolver)

	_, err := s.Geocode(context.Background(), domain.ByDescription("flooding in Atlantis"))

	var geocodeErr *domain.GeocodeError
	require.ErrorAs(t, err, &geocodeErr)
	assert.Equal(t, "Atlantis", geocodeErr.Location)
}

func TestService_FailedResolutionIsNotCached(t *testing.T) {
	extractor := &fakeExtractor{result: "Springfield"}
	resolver := &fakeResolver{ok: false}
	s := newService(extractor, resolver)

	_, err := s.Geocode(context.Background(), domain.ByDescription("fire near Springfield"))
	require.Error(t, err)

	// Simulated outage recovers; the retry must re-attempt the providers.
	resolver.coords = domain.Coordinates{Lat: 39.8, Lon: -89.6}
	resolver.ok = true

	result, err := s.Geocode(context.Background(), domain.ByDescription("fire near Springfield"))
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 39.8, Lon: -89.6}, result.Coordinates)
	assert.Equal(t, 2, resolver.calls)
}

func TestService_CancelledContextDoesNotWriteCache(t *testing.T) {
	extractor := &fakeExtractor{result: "Austin"}
	resolver := &fakeResolver{coords: domain.Coordinates{Lat: 30.2, Lon: -97.7}, ok: true}
	store := cache.NewMemory()
	s := NewService(extractor, resolver, store, time.Hour, observability.NewMetricsForTesting(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Geocode(ctx, domain.ByDescription("storm near Austin"))
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestService_ExplicitAndExtractedShareCacheEntry(t *testing.T) {
	// Both paths key by the resolved location text, so an explicit "Wall
	// Street" lookup warms the cache for a description that extracts to it.
	extractor := &fakeExtractor{result: "Wall Street"}
	resolver := &fakeResolver{coords: domain.Coordinates{Lat: 40.7, Lon: -74}, ok: true}
	s := newService(extractor, resolver)

	_, err := s.Geocode(context.Background(), domain.ByLocation("Wall Street"))
	require.NoError(t, err)
	_, err = s.Geocode(context.Background(), domain.ByDescription("flooding near Wall Street"))
	require.NoError(t, err)

	assert.Equal(t, 1, resolver.calls)
}
