// Package domain models locations, humidity forecasts and room humidity
// simulations.
//
// # Locations
//
// A [Location] is only built through [NewLocation], which rejects coordinates
// outside latitude [-90, 90] and longitude [-180, 180]. Place-lookup providers
// return heterogeneous address components ("city", "town", "village",
// "municipality", "state", "region", "country"); [FirstPresent] picks a value
// from an ordered fallback chain so resolution never depends on one provider's
// shape.
//
// # Forecasts
//
// Forecast blocks ([SeriesBlock]) share one time axis across named series.
// A series that was not requested or not returned is absent, never empty:
//
//	rh, ok := forecast.Hourly.Series("relative_humidity_2m")
//	if !ok {
//		// not requested or not returned
//	}
//
// "Current" humidity ([LatestHourly]) is the last sample of the returned
// hourly window, not a live observation.
//
// # Simulation
//
// A [HumiditySource] is sparse: inactive samples are left out rather than set
// to zero. Timestamps use the engine's strftime-style format "%Y-%m-%d %H:%M"
// and are always UTC. The engine is the only interpreter of units; this
// package only checks that every unit belongs to its closed set.
//
// # Errors
//
// [ValidationError] is returned before any network call. [NotFoundError] is a
// definitive miss. [ServiceError] covers timeouts and unreachable or failing
// services. [ConnectivityError] and [RemoteError] split simulation-engine
// failures into "could not connect" and "rejected the request".
package domain
