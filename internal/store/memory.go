package store

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process fake of the storage collaborators. Radius search is
// a naive haversine scan, which is plenty for seeded development data.
type Memory struct {
	mu        sync.RWMutex
	disasters map[string]Disaster
	resources map[string]Resource
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		disasters: make(map[string]Disaster),
		resources: make(map[string]Resource),
	}
}

// SeedDisaster inserts or replaces a disaster record.
func (m *Memory) SeedDisaster(d Disaster) {
	m.mu.Lock()
	m.disasters[d.ID] = d
	m.mu.Unlock()
}

// Disaster implements Disasters.
func (m *Memory) Disaster(_ context.Context, id string) (Disaster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.disasters[id]
	if !ok {
		return Disaster{}, ErrNotFound
	}
	return d, nil
}

// CreateResource implements ResourceFinder, assigning an ID when absent.
func (m *Memory) CreateResource(_ context.Context, r Resource) (Resource, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.mu.Lock()
	m.resources[r.ID] = r
	m.mu.Unlock()
	return r, nil
}

// ResourcesNearby implements ResourceFinder: the disaster's resources within
// radiusMeters of the point, nearest first.
func (m *Memory) ResourcesNearby(_ context.Context, disasterID string, lat, lon, radiusMeters float64) ([]Resource, error) {
	type scored struct {
		r Resource
		d float64
	}

	m.mu.RLock()
	hits := make([]scored, 0, len(m.resources))
	for _, r := range m.resources {
		if r.DisasterID != disasterID {
			continue
		}
		if d := haversineMeters(lat, lon, r.Lat, r.Lon); d <= radiusMeters {
			hits = append(hits, scored{r: r, d: d})
		}
	}
	m.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool { return hits[i].d < hits[j].d })

	out := make([]Resource, len(hits))
	for i, h := range hits {
		out[i] = h.r
	}
	return out, nil
}

const earthRadiusMeters = 6371000

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
