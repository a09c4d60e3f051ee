package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/disaster-response-hub/internal/domain"
)

// Nominatim implements Provider against the OpenStreetMap Nominatim API.
// The usage policy caps anonymous clients at one request per second, enforced
// here with a rate limiter so a burst of cache misses cannot get the service
// blocked.
type Nominatim struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewNominatim creates a Nominatim provider.
func NewNominatim(baseURL string, timeout time.Duration) *Nominatim {
	return &Nominatim{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (n *Nominatim) Name() string { return "nominatim" }

// Geocode resolves location text via the /search endpoint, first candidate wins.
func (n *Nominatim) Geocode(ctx context.Context, location string) (domain.Coordinates, bool, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim rate limit wait: %w", err)
	}

	params := url.Values{
		"q":      {location},
		"format": {"json"},
		"limit":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("create nominatim request: %w", err)
	}
	// Nominatim requires an identifying User-Agent.
	req.Header.Set("User-Agent", "disaster-response-hub/1.0")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Coordinates{}, false, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("decode nominatim response: %w", err)
	}

	if len(places) == 0 {
		return domain.Coordinates{}, false, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("parse nominatim lat %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("parse nominatim lon %q: %w", places[0].Lon, err)
	}

	return domain.Coordinates{Lat: lat, Lon: lon}, true, nil
}

// nominatimPlace is one result from the /search endpoint. Coordinates come
// back as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
