package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/disaster-response-hub/internal/domain"
)

// Mapbox implements Provider against the Mapbox Geocoding API. Token-gated;
// it sits behind Nominatim in the default chain and only sees queries the
// free provider could not resolve.
type Mapbox struct {
	token      string
	httpClient *http.Client
	baseURL    string
}

// NewMapbox creates a Mapbox provider.
func NewMapbox(token string, timeout time.Duration) *Mapbox {
	return &Mapbox{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/geocoding/v5/mapbox.places",
	}
}

func (m *Mapbox) Name() string { return "mapbox" }

// Geocode resolves location text to coordinates, first feature wins.
func (m *Mapbox) Geocode(ctx context.Context, location string) (domain.Coordinates, bool, error) {
	u := fmt.Sprintf("%s/%s.json", m.baseURL, url.PathEscape(location))
	params := url.Values{
		"access_token": {m.token},
		"limit":        {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("create mapbox request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("mapbox request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Coordinates{}, false, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var mapboxResp mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("decode mapbox response: %w", err)
	}

	if len(mapboxResp.Features) == 0 || len(mapboxResp.Features[0].Center) != 2 {
		return domain.Coordinates{}, false, nil
	}

	// Mapbox uses lon,lat order.
	f := mapboxResp.Features[0]
	return domain.Coordinates{Lat: f.Center[1], Lon: f.Center[0]}, true, nil
}

// Mapbox API response types.

type mapboxResponse struct {
	Features []mapboxFeature `json:"features"`
}

type mapboxFeature struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
}
