// Package geocode resolves place descriptions to locations and back through a
// place-lookup provider.
package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
)

// Fallback chains over provider address components, most specific first.
var (
	forwardCityChain = []string{"city", "town", "village"}
	reverseCityChain = []string{"city", "town", "village", "municipality"}
	countryChain     = []string{"country"}
	stateChain       = []string{"state", "region"}
)

const unknownComponent = "Unknown"

// Resolver implements domain.AddressResolver on top of a domain.PlaceLookup.
// It does no retrying and no throttling.
type Resolver struct {
	lookup  domain.PlaceLookup
	timeout time.Duration
	logger  *slog.Logger
}

// NewResolver creates a resolver. A positive timeout bounds every lookup.
func NewResolver(lookup domain.PlaceLookup, timeout time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{lookup: lookup, timeout: timeout, logger: logger}
}

// ForwardGeocode resolves a city and country, with an optional state, to a
// location carrying the provider's coordinates.
func (r *Resolver) ForwardGeocode(ctx context.Context, city, country, state string) (domain.Location, error) {
	city, country, state = strings.TrimSpace(city), strings.TrimSpace(country), strings.TrimSpace(state)
	if city == "" {
		return domain.Location{}, &domain.ValidationError{Field: "city", Message: "must not be empty"}
	}
	if country == "" {
		return domain.Location{}, &domain.ValidationError{Field: "country", Message: "must not be empty"}
	}

	query := city + ", " + country
	if state != "" {
		query = city + ", " + state + ", " + country
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	place, err := r.lookup.Search(ctx, query)
	if err != nil {
		return domain.Location{}, &domain.ServiceError{Op: "forward geocode " + query, Timeout: r.timeout, Err: err}
	}
	if place == nil {
		return domain.Location{}, &domain.NotFoundError{Query: query}
	}

	r.logger.Debug("forward geocode resolved", "query", query, "lat", place.Latitude, "lon", place.Longitude)

	return domain.NewLocation(
		domain.FirstPresent(place.Components, forwardCityChain, city),
		domain.FirstPresent(place.Components, countryChain, country),
		domain.FirstPresent(place.Components, stateChain, state),
		place.Latitude,
		place.Longitude,
		place.Address,
	)
}

// ReverseGeocode resolves coordinates to a location. The returned coordinates
// are the caller's, not the provider's.
func (r *Resolver) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.Location, error) {
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return domain.Location{}, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf("%v, %v", lat, lon)
	place, err := r.lookup.Reverse(ctx, lat, lon)
	if err != nil {
		return domain.Location{}, &domain.ServiceError{Op: "reverse geocode " + query, Timeout: r.timeout, Err: err}
	}
	if place == nil {
		return domain.Location{}, &domain.NotFoundError{Query: query}
	}

	r.logger.Debug("reverse geocode resolved", "query", query, "address", place.Address)

	return domain.NewLocation(
		domain.FirstPresent(place.Components, reverseCityChain, unknownComponent),
		domain.FirstPresent(place.Components, countryChain, unknownComponent),
		domain.FirstPresent(place.Components, stateChain, ""),
		lat,
		lon,
		place.Address,
	)
}

func (r *Resolver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}
