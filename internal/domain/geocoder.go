package domain

import "context"

// Place is the best match returned by a place-lookup provider. It carries only
// the fields address resolution reads.
type Place struct {
	Latitude   float64
	Longitude  float64
	Address    string            // full formatted address
	Components map[string]string // raw address components (city, town, state, ...)
}

// PlaceLookup is the provider surface behind address resolution.
// Both methods return a nil Place and a nil error when nothing matched.
type PlaceLookup interface {
	// Search returns the single best match for a free-text query.
	Search(ctx context.Context, query string) (*Place, error)

	// Reverse returns the single best match at the given coordinates.
	Reverse(ctx context.Context, lat, lon float64) (*Place, error)
}

// AddressResolver turns place descriptions into locations and back.
type AddressResolver interface {
	// ForwardGeocode resolves a city and country (state optional) to a location.
	ForwardGeocode(ctx context.Context, city, country, state string) (Location, error)

	// ReverseGeocode resolves coordinates to a location.
	ReverseGeocode(ctx context.Context, lat, lon float64) (Location, error)
}

// FirstPresent walks chain in order and returns the first component holding a
// non-empty value, or fallback if none does.
func FirstPresent(components map[string]string, chain []string, fallback string) string {
	for _, key := range chain {
		if v := components[key]; v != "" {
			return v
		}
	}
	return fallback
}
