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

type countingForecaster struct {
	forecastCalls   int
	currentCalls    int
	conditionsCalls int
	lastQuery       domain.ForecastQuery
	err             error
}

func (m *countingForecaster) HumidityForecast(_ context.Context, lat, lon float64, q domain.ForecastQuery) (domain.HumidityForecast, error) {
	m.forecastCalls++
	m.lastQuery = q
	hourly, err := domain.NewSeriesBlock(
		[]time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		map[string][]float64{"relative_humidity_2m": {80}},
	)
	if err != nil {
		return domain.HumidityForecast{}, err
	}
	return domain.HumidityForecast{Latitude: lat, Longitude: lon, Timezone: q.Timezone, Hourly: hourly}, m.err
}

func (m *countingForecaster) CurrentHumidity(context.Context, float64, float64, string) (map[string]float64, error) {
	m.currentCalls++
	return map[string]float64{"relative_humidity_2m": 70}, m.err
}

func (m *countingForecaster) CurrentConditions(context.Context, float64, float64, string) (domain.CurrentConditions, error) {
	m.conditionsCalls++
	return domain.CurrentConditions{}, m.err
}

var testTTLs = ForecastTTLs{Forecast: 30 * time.Minute, Conditions: 10 * time.Minute}

func TestCachedForecaster_ForecastHit(t *testing.T) {
	inner := &countingForecaster{}
	cached := NewCachedForecaster(inner, 10, testTTLs, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	_, err := cached.HumidityForecast(context.Background(), 51.5, -0.12, domain.NewForecastQuery())
	require.NoError(t, err)
	// A zero query normalizes to the same request.
	_, err = cached.HumidityForecast(context.Background(), 51.5, -0.12, domain.ForecastQuery{})
	require.NoError(t, err)

	assert.Equal(t, 1, inner.forecastCalls)
	assert.Equal(t, domain.HourlyHumidityFields(), inner.lastQuery.Hourly)
}

func TestCachedForecaster_QueryDistinguishesNilFromEmpty(t *testing.T) {
	inner := &countingForecaster{}
	cached := NewCachedForecaster(inner, 10, testTTLs, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	q := domain.NewForecastQuery()
	q.Daily = []string{}
	_, _ = cached.HumidityForecast(context.Background(), 1, 2, domain.NewForecastQuery())
	_, _ = cached.HumidityForecast(context.Background(), 1, 2, q)

	q.PastDays = 3
	_, _ = cached.HumidityForecast(context.Background(), 1, 2, q)

	assert.Equal(t, 3, inner.forecastCalls)
}

func TestCachedForecaster_CurrentAndConditionsTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingForecaster{}
	cached := NewCachedForecaster(inner, 10, testTTLs, clock, observability.NewMetricsForTesting())

	_, _ = cached.CurrentHumidity(context.Background(), 1, 2, "auto")
	_, _ = cached.CurrentConditions(context.Background(), 1, 2, "auto")
	clock.Advance(15 * time.Minute)
	_, _ = cached.CurrentHumidity(context.Background(), 1, 2, "auto")
	_, _ = cached.CurrentConditions(context.Background(), 1, 2, "auto")

	assert.Equal(t, 1, inner.currentCalls, "still within forecast TTL")
	assert.Equal(t, 2, inner.conditionsCalls, "conditions TTL elapsed")
}

func TestCachedForecaster_ErrorsNotCached(t *testing.T) {
	inner := &countingForecaster{err: &domain.ServiceError{Op: "forecast", Err: domain.ErrProviderUnavailable}}
	cached := NewCachedForecaster(inner, 10, testTTLs, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	_, err := cached.HumidityForecast(context.Background(), 1, 2, domain.NewForecastQuery())
	require.Error(t, err)
	_, err = cached.HumidityForecast(context.Background(), 1, 2, domain.NewForecastQuery())
	require.Error(t, err)

	assert.Equal(t, 2, inner.forecastCalls)
}

func TestCachedForecaster_RejectsOutOfRangeBeforeCache(t *testing.T) {
	inner := &countingForecaster{}
	cached := NewCachedForecaster(inner, 10, testTTLs, clockwork.NewFakeClock(), observability.NewMetricsForTesting())
	ctx := context.Background()

	_, err := cached.HumidityForecast(ctx, 90, 180, domain.NewForecastQuery())
	require.NoError(t, err)
	_, err = cached.CurrentHumidity(ctx, 90, 180, "auto")
	require.NoError(t, err)
	_, err = cached.CurrentConditions(ctx, 90, 180, "auto")
	require.NoError(t, err)

	var ve *domain.ValidationError
	_, err = cached.HumidityForecast(ctx, 90.0000001, 180, domain.NewForecastQuery())
	assert.ErrorAs(t, err, &ve)
	_, err = cached.CurrentHumidity(ctx, 90, 180.0000001, "auto")
	assert.ErrorAs(t, err, &ve)
	_, err = cached.CurrentConditions(ctx, -90.0000001, 0, "auto")
	assert.ErrorAs(t, err, &ve)

	assert.Equal(t, 1, inner.forecastCalls)
	assert.Equal(t, 1, inner.currentCalls)
	assert.Equal(t, 1, inner.conditionsCalls)
}

func TestCachedForecaster_NearbyCoordinatesDoNotShareEntries(t *testing.T) {
	inner := &countingForecaster{}
	cached := NewCachedForecaster(inner, 10, testTTLs, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	f1, err := cached.HumidityForecast(context.Background(), 51.5, -0.12, domain.NewForecastQuery())
	require.NoError(t, err)
	f2, err := cached.HumidityForecast(context.Background(), 51.50000001, -0.12, domain.NewForecastQuery())
	require.NoError(t, err)

	assert.Equal(t, 2, inner.forecastCalls)
	assert.Equal(t, 51.5, f1.Latitude)
	assert.Equal(t, 51.50000001, f2.Latitude)
}

func TestCachedForecaster_CallersGetIndependentCopies(t *testing.T) {
	inner := &countingForecaster{}
	cached := NewCachedForecaster(inner, 10, testTTLs, clockwork.NewFakeClock(), observability.NewMetricsForTesting())
	ctx := context.Background()

	current, err := cached.CurrentHumidity(ctx, 1, 2, "auto")
	require.NoError(t, err)
	delete(current, "relative_humidity_2m")
	current, err = cached.CurrentHumidity(ctx, 1, 2, "auto")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"relative_humidity_2m": 70}, current)
	current["relative_humidity_2m"] = 0
	current, err = cached.CurrentHumidity(ctx, 1, 2, "auto")
	require.NoError(t, err)
	assert.Equal(t, 70.0, current["relative_humidity_2m"])

	forecast, err := cached.HumidityForecast(ctx, 1, 2, domain.NewForecastQuery())
	require.NoError(t, err)
	rh, ok := forecast.Hourly.Series("relative_humidity_2m")
	require.True(t, ok)
	rh[0] = -1
	forecast, err = cached.HumidityForecast(ctx, 1, 2, domain.NewForecastQuery())
	require.NoError(t, err)
	rh, _ = forecast.Hourly.Series("relative_humidity_2m")
	assert.Equal(t, []float64{80}, rh)
	assert.Equal(t, 1, inner.forecastCalls)
	assert.Equal(t, 1, inner.currentCalls)
}
