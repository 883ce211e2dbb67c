// Package app wires configuration into the resolver, forecaster and
// simulation stack shared by the service and the CLI.
package app

import (
	"log/slog"

	"github.com/couchcryptid/humidity-adviser/internal/adapter/nominatim"
	"github.com/couchcryptid/humidity-adviser/internal/adapter/openmeteo"
	"github.com/couchcryptid/humidity-adviser/internal/adapter/simulator"
	"github.com/couchcryptid/humidity-adviser/internal/cache"
	"github.com/couchcryptid/humidity-adviser/internal/config"
	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/geocode"
	"github.com/couchcryptid/humidity-adviser/internal/observability"
	"github.com/couchcryptid/humidity-adviser/internal/scenario"
	"github.com/couchcryptid/humidity-adviser/internal/simulation"
	"github.com/jonboulle/clockwork"
)

// Services holds the wired domain services.
type Services struct {
	Resolver   domain.AddressResolver
	Forecaster domain.Forecaster
	Scenarios  *scenario.Registry
	Simulator  domain.Simulator
	Runner     *simulation.Runner
}

// NewServices builds every service from cfg. Geocoding is throttled to
// cfg.GeocoderRPS, and both geocoding and forecasts are cached when
// cfg.CacheEnabled is set.
func NewServices(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Services {
	lookup := nominatim.NewClient(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.GeocoderTimeout, metrics, logger)
	var resolver domain.AddressResolver = geocode.NewRateLimitedResolver(
		geocode.NewResolver(lookup, cfg.GeocoderTimeout, logger), cfg.GeocoderRPS, 1)

	var forecaster domain.Forecaster = openmeteo.NewClient(cfg.OpenMeteoURL, cfg.ForecastTimeout, metrics, logger)

	if cfg.CacheEnabled {
		clock := clockwork.NewRealClock()
		resolver = cache.NewCachedResolver(resolver, cfg.CacheSize, cfg.GeocodeCacheTTL, clock, metrics)
		forecaster = cache.NewCachedForecaster(forecaster, cfg.CacheSize, cache.ForecastTTLs{
			Forecast:   cfg.ForecastCacheTTL,
			Conditions: cfg.ConditionsCacheTTL,
		}, clock, metrics)
		logger.Info("response caching enabled",
			"cache_size", cfg.CacheSize,
			"geocode_ttl", cfg.GeocodeCacheTTL,
			"forecast_ttl", cfg.ForecastCacheTTL,
			"conditions_ttl", cfg.ConditionsCacheTTL,
		)
	} else {
		logger.Info("response caching disabled")
	}

	scenarios := scenario.Default()
	sim := simulator.NewClient(cfg.SimulatorURL, cfg.SimulatorTimeout, metrics, logger)

	return &Services{
		Resolver:   resolver,
		Forecaster: forecaster,
		Scenarios:  scenarios,
		Simulator:  sim,
		Runner:     simulation.NewRunner(scenarios, sim, metrics, logger),
	}
}
