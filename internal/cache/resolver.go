package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/observability"
	"github.com/jonboulle/clockwork"
)

// CachedResolver wraps an AddressResolver with a TTL+LRU cache.
type CachedResolver struct {
	inner   domain.AddressResolver
	cache   *LRU[domain.Location]
	metrics *observability.Metrics
}

// NewCachedResolver creates a cache decorator around a resolver.
func NewCachedResolver(inner domain.AddressResolver, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedResolver {
	return &CachedResolver{
		inner:   inner,
		cache:   NewLRU[domain.Location](maxEntries, ttl, clock),
		metrics: metrics,
	}
}

func (c *CachedResolver) ForwardGeocode(ctx context.Context, city, country, state string) (domain.Location, error) {
	key := fmt.Sprintf("fwd:%s|%s|%s", city, country, state)
	if loc, ok := c.cache.Get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("geocode", "hit").Inc()
		return loc, nil
	}
	c.metrics.CacheLookups.WithLabelValues("geocode", "miss").Inc()

	loc, err := c.inner.ForwardGeocode(ctx, city, country, state)
	if err != nil {
		return loc, err
	}
	c.cache.Put(key, loc)
	return loc, nil
}

func (c *CachedResolver) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.Location, error) {
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return domain.Location{}, err
	}
	key := "rev:" + coordKey(lat, lon)
	if loc, ok := c.cache.Get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("geocode", "hit").Inc()
		return loc, nil
	}
	c.metrics.CacheLookups.WithLabelValues("geocode", "miss").Inc()

	loc, err := c.inner.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return loc, err
	}
	c.cache.Put(key, loc)
	return loc, nil
}

// coordKey formats coordinates exactly, so distinct inputs never share an entry.
func coordKey(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'g', -1, 64) + "," + strconv.FormatFloat(lon, 'g', -1, 64)
}
