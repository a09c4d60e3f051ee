package geocode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/disaster-response-hub/internal/domain"
	"github.com/couchcryptid/disaster-response-hub/internal/observability"
)

// --- mocks ---

type fakeProvider struct {
	name   string
	coords domain.Coordinates
	ok     bool
	err    error
	calls  int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Geocode(_ context.Context, _ string) (domain.Coordinates, bool, error) {
	p.calls++
	return p.coords, p.ok, p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newChain(providers ...Provider) *Chain {
	return NewChain(providers, observability.NewMetricsForTesting(), discardLogger())
}

// --- tests ---

func TestChain_ShortCircuitsOnFirstResult(t *testing.T) {
	a := &fakeProvider{name: "a", coords: domain.Coordinates{Lat: 40.7061, Lon: -74.0088}, ok: true}
	b := &fakeProvider{name: "b", coords: domain.Coordinates{Lat: 1, Lon: 1}, ok: true}

	coords, ok := newChain(a, b).Resolve(context.Background(), "Wall Street")

	assert.True(t, ok)
	assert.Equal(t, domain.Coordinates{Lat: 40.7061, Lon: -74.0088}, coords)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls, "later providers must never be consulted after a usable result")
}

func TestChain_FallsBackPastErrors(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("timeout")}
	b := &fakeProvider{name: "b", coords: domain.Coordinates{Lat: 51.5, Lon: -0.12}, ok: true}

	coords, ok := newChain(a, b).Resolve(context.Background(), "London")

	assert.True(t, ok)
	assert.Equal(t, domain.Coordinates{Lat: 51.5, Lon: -0.12}, coords, "coordinates must be exactly the fallback provider's")
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestChain_FallsBackPastEmptyResults(t *testing.T) {
	a := &fakeProvider{name: "a", ok: false}
	b := &fakeProvider{name: "b", coords: domain.Coordinates{Lat: 2, Lon: 3}, ok: true}

	_, ok := newChain(a, b).Resolve(context.Background(), "somewhere")

	assert.True(t, ok)
	assert.Equal(t, 1, b.calls)
}

func TestChain_AbsentWhenExhausted(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("down")}
	b := &fakeProvider{name: "b", ok: false}

	_, ok := newChain(a, b).Resolve(context.Background(), "nowhere")

	assert.False(t, ok)
}

func TestChain_NoProviders(t *testing.T) {
	_, ok := newChain().Resolve(context.Background(), "anywhere")
	assert.False(t, ok)
}
