package cache

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingResolver struct {
	forwardCalls int
	reverseCalls int
	loc          domain.Location
	err          error
}

func (m *countingResolver) ForwardGeocode(_ context.Context, _, _, _ string) (domain.Location, error) {
	m.forwardCalls++
	return m.loc, m.err
}

func (m *countingResolver) ReverseGeocode(_ context.Context, lat, lon float64) (domain.Location, error) {
	m.reverseCalls++
	loc := m.loc
	loc.Latitude, loc.Longitude = lat, lon
	return loc, m.err
}

func TestCachedResolver_ForwardCacheHit(t *testing.T) {
	inner := &countingResolver{loc: domain.Location{City: "London", Country: "United Kingdom", Latitude: 51.5, Longitude: -0.12}}
	cached := NewCachedResolver(inner, 10, time.Hour, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	l1, err := cached.ForwardGeocode(context.Background(), "London", "UK", "")
	require.NoError(t, err)
	l2, err := cached.ForwardGeocode(context.Background(), "London", "UK", "")
	require.NoError(t, err)

	assert.Equal(t, l1, l2)
	assert.Equal(t, 1, inner.forwardCalls, "should only call inner once")
}

func TestCachedResolver_ForwardKeyIncludesState(t *testing.T) {
	inner := &countingResolver{loc: domain.Location{City: "Springfield"}}
	cached := NewCachedResolver(inner, 10, time.Hour, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	_, _ = cached.ForwardGeocode(context.Background(), "Springfield", "USA", "Illinois")
	_, _ = cached.ForwardGeocode(context.Background(), "Springfield", "USA", "Missouri")

	assert.Equal(t, 2, inner.forwardCalls)
}

func TestCachedResolver_ReverseCacheHit(t *testing.T) {
	inner := &countingResolver{loc: domain.Location{City: "Paris", Country: "France"}}
	cached := NewCachedResolver(inner, 10, time.Hour, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	_, err := cached.ReverseGeocode(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)
	loc, err := cached.ReverseGeocode(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)

	assert.Equal(t, "Paris", loc.City)
	assert.Equal(t, 48.8566, loc.Latitude)
	assert.Equal(t, 1, inner.reverseCalls)
}

func TestCachedResolver_ErrorsNotCached(t *testing.T) {
	inner := &countingResolver{err: &domain.NotFoundError{Query: "Atlantis, Ocean"}}
	cached := NewCachedResolver(inner, 10, time.Hour, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	_, err := cached.ForwardGeocode(context.Background(), "Atlantis", "Ocean", "")
	require.Error(t, err)
	_, err = cached.ForwardGeocode(context.Background(), "Atlantis", "Ocean", "")
	require.Error(t, err)

	assert.Equal(t, 2, inner.forwardCalls, "errors should not be cached")
}

func TestCachedResolver_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingResolver{loc: domain.Location{City: "London"}}
	cached := NewCachedResolver(inner, 10, time.Hour, clock, observability.NewMetricsForTesting())

	_, _ = cached.ForwardGeocode(context.Background(), "London", "UK", "")
	clock.Advance(2 * time.Hour)
	_, _ = cached.ForwardGeocode(context.Background(), "London", "UK", "")

	assert.Equal(t, 2, inner.forwardCalls)
}

func TestCachedResolver_ReverseRejectsOutOfRangeBeforeCache(t *testing.T) {
	inner := &countingResolver{loc: domain.Location{City: "North Pole", Country: "Arctic"}}
	cached := NewCachedResolver(inner, 10, time.Hour, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	loc, err := cached.ReverseGeocode(context.Background(), 90, 0)
	require.NoError(t, err)
	assert.Equal(t, 90.0, loc.Latitude)

	loc, err = cached.ReverseGeocode(context.Background(), 90.0000001, 0)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "latitude", ve.Field)
	assert.Equal(t, domain.Location{}, loc)
	assert.Equal(t, 1, inner.reverseCalls)
}

func TestCachedResolver_ReverseKeysAreExact(t *testing.T) {
	inner := &countingResolver{loc: domain.Location{City: "Paris", Country: "France"}}
	cached := NewCachedResolver(inner, 10, time.Hour, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	_, err := cached.ReverseGeocode(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)
	loc, err := cached.ReverseGeocode(context.Background(), 48.85660001, 2.3522)
	require.NoError(t, err)

	assert.Equal(t, 48.85660001, loc.Latitude)
	assert.Equal(t, 2, inner.reverseCalls)
}
