// Package store declares the persistence capabilities the hub consumes.
// The real implementation (relational records plus geospatial radius search)
// lives in the platform's storage service; this package carries the contract
// and an in-memory fake for development and tests.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Disaster is the platform's primary record.
type Disaster struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	LocationName string `json:"location_name"`
	Description  string `json:"description"`
}

// Resource is a relief resource (shelter, supply point, medical station)
// positioned near a disaster.
type Resource struct {
	ID         string  `json:"id"`
	DisasterID string  `json:"disaster_id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// Disasters looks up disaster records.
type Disasters interface {
	Disaster(ctx context.Context, id string) (Disaster, error)
}

// ResourceFinder returns a disaster's resources within radiusMeters of a
// point, ordered nearest first. Geospatial query execution is the storage
// service's concern.
type ResourceFinder interface {
	ResourcesNearby(ctx context.Context, disasterID string, lat, lon, radiusMeters float64) ([]Resource, error)
	CreateResource(ctx context.Context, r Resource) (Resource, error)
}
