//go:build nominatim

package nominatim

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/geocode"
	"github.com/couchcryptid/humidity-adviser/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the public Nominatim instance. Keep them to a handful of
// calls and respect the 1 req/s usage policy.
// Run with: go test -tags=nominatim ./internal/adapter/nominatim/ -v -count=1

func smokeResolver() *geocode.RateLimitedResolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewClient(DefaultBaseURL, "humidity-adviser-smoke-test", 10*time.Second, observability.NewMetricsForTesting(), logger)
	return geocode.NewRateLimitedResolver(geocode.NewResolver(c, 10*time.Second, logger), 1, 1)
}

func TestSmoke_ForwardGeocode(t *testing.T) {
	r := smokeResolver()

	loc, err := r.ForwardGeocode(context.Background(), "London", "United Kingdom", "")
	require.NoError(t, err)

	assert.InDelta(t, 51.5, loc.Latitude, 0.5)
	assert.InDelta(t, -0.12, loc.Longitude, 0.5)
	assert.Equal(t, "London", loc.City)
	assert.NotEmpty(t, loc.DisplayName)
	t.Logf("forward: %+v", loc)
}

func TestSmoke_ReverseGeocode(t *testing.T) {
	r := smokeResolver()

	loc, err := r.ReverseGeocode(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)

	assert.Equal(t, "France", loc.Country)
	assert.Equal(t, 48.8566, loc.Latitude)
	t.Logf("reverse: %+v", loc)
}
