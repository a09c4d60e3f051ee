package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "pk.test-token"

func testMapbox(baseURL string) *Mapbox {
	m := NewMapbox(testToken, 5*time.Second)
	m.baseURL = baseURL
	return m
}

func TestMapbox_Geocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.EscapedPath(), "Wall%20Street")
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		resp := mapboxResponse{
			Features: []mapboxFeature{
				{Center: []float64{-74.0088, 40.7061}, PlaceName: "Wall Street, New York"},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	coords, ok, err := testMapbox(srv.URL).Geocode(context.Background(), "Wall Street")
	require.NoError(t, err)
	require.True(t, ok)
	// Feature center is lon,lat; the provider swaps into lat/lon.
	assert.Equal(t, 40.7061, coords.Lat)
	assert.Equal(t, -74.0088, coords.Lon)
}

func TestMapbox_Geocode_NoFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(mapboxResponse{}))
	}))
	defer srv.Close()

	_, ok, err := testMapbox(srv.URL).Geocode(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMapbox_Geocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, _, err := testMapbox(srv.URL).Geocode(context.Background(), "anywhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
