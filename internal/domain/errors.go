package domain

import "fmt"

// ExtractionError is returned when no location could be extracted from a
// description. Terminal for the current request; the offending text is
// included so the caller can surface it to the user.
type ExtractionError struct {
	Description string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not extract a location from %q", e.Description)
}

// GeocodeError is returned when every provider in the fallback chain failed
// to resolve a location. Terminal for the current request.
type GeocodeError struct {
	Location string
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("could not geocode location %q", e.Location)
}
