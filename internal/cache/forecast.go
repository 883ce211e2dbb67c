package cache

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/observability"
	"github.com/jonboulle/clockwork"
)

// ForecastTTLs sets how long each kind of forecast response stays fresh.
type ForecastTTLs struct {
	Forecast   time.Duration
	Conditions time.Duration
}

// CachedForecaster wraps a Forecaster with TTL+LRU caches. Forecasts and
// latest-hourly maps share the forecast TTL; current conditions use their own.
type CachedForecaster struct {
	inner      domain.Forecaster
	forecasts  *LRU[domain.HumidityForecast]
	current    *LRU[map[string]float64]
	conditions *LRU[domain.CurrentConditions]
	metrics    *observability.Metrics
}

// NewCachedForecaster creates a cache decorator around a forecaster.
func NewCachedForecaster(inner domain.Forecaster, maxEntries int, ttls ForecastTTLs, clock clockwork.Clock, metrics *observability.Metrics) *CachedForecaster {
	return &CachedForecaster{
		inner:      inner,
		forecasts:  NewLRU[domain.HumidityForecast](maxEntries, ttls.Forecast, clock),
		current:    NewLRU[map[string]float64](maxEntries, ttls.Forecast, clock),
		conditions: NewLRU[domain.CurrentConditions](maxEntries, ttls.Conditions, clock),
		metrics:    metrics,
	}
}

func (c *CachedForecaster) HumidityForecast(ctx context.Context, lat, lon float64, q domain.ForecastQuery) (domain.HumidityForecast, error) {
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return domain.HumidityForecast{}, err
	}
	if n, err := q.Normalize(); err == nil {
		q = n
	}
	key := fmt.Sprintf("%s|h=%s|d=%s|p=%d|f=%d|tz=%s",
		coordKey(lat, lon), fieldsKey(q.Hourly), fieldsKey(q.Daily), q.PastDays, q.ForecastDays, q.Timezone)
	return lookup(c, c.forecasts, "forecast", key, domain.HumidityForecast.Clone, func() (domain.HumidityForecast, error) {
		return c.inner.HumidityForecast(ctx, lat, lon, q)
	})
}

func (c *CachedForecaster) CurrentHumidity(ctx context.Context, lat, lon float64, timezone string) (map[string]float64, error) {
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	key := coordKey(lat, lon) + "|tz=" + timezone
	return lookup(c, c.current, "current", key, cloneMap, func() (map[string]float64, error) {
		return c.inner.CurrentHumidity(ctx, lat, lon, timezone)
	})
}

func (c *CachedForecaster) CurrentConditions(ctx context.Context, lat, lon float64, timezone string) (domain.CurrentConditions, error) {
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return domain.CurrentConditions{}, err
	}
	key := coordKey(lat, lon) + "|tz=" + timezone
	return lookup(c, c.conditions, "conditions", key, domain.CurrentConditions.Clone, func() (domain.CurrentConditions, error) {
		return c.inner.CurrentConditions(ctx, lat, lon, timezone)
	})
}

// lookup serves key from cache or calls fetch, caching only successes.
// Callers always get their own copy of the cached value.
func lookup[V any](c *CachedForecaster, lru *LRU[V], name, key string, clone func(V) V, fetch func() (V, error)) (V, error) {
	if v, ok := lru.Get(key); ok {
		c.metrics.CacheLookups.WithLabelValues(name, "hit").Inc()
		return clone(v), nil
	}
	c.metrics.CacheLookups.WithLabelValues(name, "miss").Inc()

	v, err := fetch()
	if err != nil {
		return v, err
	}
	lru.Put(key, clone(v))
	return v, nil
}

// fieldsKey distinguishes a nil list (all fields) from an empty one (none).
func fieldsKey(fields []string) string {
	if fields == nil {
		return "*"
	}
	return "[" + strings.Join(fields, ",") + "]"
}

func cloneMap(m map[string]float64) map[string]float64 { return maps.Clone(m) }
