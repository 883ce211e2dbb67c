package geocode

import (
	"context"
	"fmt"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"golang.org/x/time/rate"
)

// RateLimitedResolver throttles an AddressResolver so every call waits for a
// limiter token. Nominatim's public instance allows one request per second.
type RateLimitedResolver struct {
	inner   domain.AddressResolver
	limiter *rate.Limiter
}

// NewRateLimitedResolver wraps inner with a token bucket of rps requests per
// second and the given burst.
func NewRateLimitedResolver(inner domain.AddressResolver, rps float64, burst int) *RateLimitedResolver {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedResolver{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// ForwardGeocode waits for a token, then forwards to the wrapped resolver.
func (r *RateLimitedResolver) ForwardGeocode(ctx context.Context, city, country, state string) (domain.Location, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.Location{}, &domain.ServiceError{Op: "forward geocode", Err: fmt.Errorf("rate limit wait canceled: %w", err)}
	}
	return r.inner.ForwardGeocode(ctx, city, country, state)
}

// ReverseGeocode waits for a token, then forwards to the wrapped resolver.
func (r *RateLimitedResolver) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.Location, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.Location{}, &domain.ServiceError{Op: "reverse geocode", Err: fmt.Errorf("rate limit wait canceled: %w", err)}
	}
	return r.inner.ReverseGeocode(ctx, lat, lon)
}
