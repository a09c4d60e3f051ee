package domain

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

// GeocodeResult pairs the location text that was resolved with its
// coordinates, so downstream consumers need not re-run extraction.
type GeocodeResult struct {
	Location    string      `json:"extracted_location"`
	Coordinates Coordinates `json:"coordinates"`
}

// GeocodeQuery is a tagged input variant: either a free-text description that
// needs location extraction, or an explicit location that skips it. Exactly
// one of the two forms is set; construct via ByDescription or ByLocation.
type GeocodeQuery struct {
	text     string
	explicit bool
}

// ByDescription builds a query whose location must be extracted from text.
func ByDescription(text string) GeocodeQuery {
	return GeocodeQuery{text: text}
}

// ByLocation builds a query with an explicit location; extraction is skipped
// because explicit intent outranks inference.
func ByLocation(location string) GeocodeQuery {
	return GeocodeQuery{text: location, explicit: true}
}

// Explicit reports whether the query carries an explicit location.
func (q GeocodeQuery) Explicit() bool { return q.explicit }

// Text returns the description or explicit location the query carries.
func (q GeocodeQuery) Text() string { return q.text }
