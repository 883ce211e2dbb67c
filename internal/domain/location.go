package domain

// Location is a resolved place with validated WGS-84 coordinates.
// Construct it with NewLocation.
type Location struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	State       string  `json:"state,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name,omitempty"`
}

// NewLocation validates the coordinates and returns the location. Out of
// range values are rejected, never clamped.
func NewLocation(city, country, state string, lat, lon float64, displayName string) (Location, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return Location{}, err
	}
	return Location{
		City:        city,
		Country:     country,
		State:       state,
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: displayName,
	}, nil
}

// ValidateCoordinates checks latitude ∈ [-90, 90] and longitude ∈ [-180, 180].
// NaN fails both comparisons and is rejected.
func ValidateCoordinates(lat, lon float64) error {
	if !(lat >= -90 && lat <= 90) {
		return invalid("latitude", "must be between -90 and 90, got %v", lat)
	}
	if !(lon >= -180 && lon <= 180) {
		return invalid("longitude", "must be between -180 and 180, got %v", lon)
	}
	return nil
}
