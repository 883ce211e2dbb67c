package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"
)

const (
	DefaultForecastDays = 7
	DefaultTimezone     = "auto"
	MaxPastDays         = 92
	MaxForecastDays     = 16
)

var (
	hourlyHumidityFields = []string{
		"relative_humidity_2m",
		"dew_point_2m",
		"vapour_pressure_deficit",
	}
	dailyHumidityFields = []string{
		"relative_humidity_2m_mean",
		"relative_humidity_2m_max",
		"relative_humidity_2m_min",
		"dew_point_2m_mean",
		"dew_point_2m_max",
		"dew_point_2m_min",
	}
	currentConditionFields = []string{
		"temperature_2m",
		"relative_humidity_2m",
		"weather_code",
	}
)

// HourlyHumidityFields returns every recognized hourly humidity field.
func HourlyHumidityFields() []string { return slices.Clone(hourlyHumidityFields) }

// DailyHumidityFields returns every recognized daily humidity field.
func DailyHumidityFields() []string { return slices.Clone(dailyHumidityFields) }

// CurrentConditionFields returns the fields requested for current conditions.
func CurrentConditionFields() []string { return slices.Clone(currentConditionFields) }

// ForecastQuery selects the series and window of a forecast request.
// A nil field list means every recognized field; a non-nil empty list means
// none, and the parameter is left out of the request.
type ForecastQuery struct {
	Hourly       []string
	Daily        []string
	PastDays     int
	ForecastDays int
	Timezone     string
}

// NewForecastQuery returns the default query: all humidity fields, no past
// days, a 7-day forecast and automatic timezone.
func NewForecastQuery() ForecastQuery {
	return ForecastQuery{ForecastDays: DefaultForecastDays, Timezone: DefaultTimezone}
}

// Normalize fills defaults and validates the day window.
func (q ForecastQuery) Normalize() (ForecastQuery, error) {
	if q.Hourly == nil {
		q.Hourly = HourlyHumidityFields()
	}
	if q.Daily == nil {
		q.Daily = DailyHumidityFields()
	}
	if q.ForecastDays == 0 {
		q.ForecastDays = DefaultForecastDays
	}
	if q.Timezone == "" {
		q.Timezone = DefaultTimezone
	}
	if q.PastDays < 0 || q.PastDays > MaxPastDays {
		return q, invalid("past_days", "must be between 0 and %d, got %d", MaxPastDays, q.PastDays)
	}
	if q.ForecastDays < 0 || q.ForecastDays > MaxForecastDays {
		return q, invalid("forecast_days", "must be between 0 and %d, got %d", MaxForecastDays, q.ForecastDays)
	}
	return q, nil
}

// SeriesBlock is one time axis with named parallel measurement series.
// Every present series has exactly len(Time) values.
type SeriesBlock struct {
	Time   []time.Time
	series map[string][]float64
}

// NewSeriesBlock checks every series against the time axis.
func NewSeriesBlock(times []time.Time, series map[string][]float64) (*SeriesBlock, error) {
	b := &SeriesBlock{Time: times, series: make(map[string][]float64, len(series))}
	for name, values := range series {
		if len(values) != len(times) {
			return nil, fmt.Errorf("series %q has %d values for %d timestamps", name, len(values), len(times))
		}
		b.series[name] = values
	}
	return b, nil
}

// Series returns the named series and whether it is present.
func (b *SeriesBlock) Series(name string) ([]float64, bool) {
	if b == nil {
		return nil, false
	}
	v, ok := b.series[name]
	return v, ok
}

// Names lists the present series, sorted.
func (b *SeriesBlock) Names() []string {
	if b == nil {
		return nil
	}
	names := make([]string, 0, len(b.series))
	for name := range b.series {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// MarshalJSON flattens the block into the provider's shape: a "time" array
// next to one array per present series.
func (b *SeriesBlock) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.series)+1)
	out["time"] = b.Time
	for name, values := range b.series {
		out[name] = values
	}
	return json.Marshal(out)
}

// Clone returns a deep copy of the block.
func (b *SeriesBlock) Clone() *SeriesBlock {
	if b == nil {
		return nil
	}
	c := &SeriesBlock{Time: slices.Clone(b.Time), series: make(map[string][]float64, len(b.series))}
	for name, values := range b.series {
		c.series[name] = slices.Clone(values)
	}
	return c
}

// HumidityForecast is a parsed forecast response. Hourly and Daily are nil
// when the block was not requested or not returned.
type HumidityForecast struct {
	Latitude             float64           `json:"latitude"`
	Longitude            float64           `json:"longitude"`
	Timezone             string            `json:"timezone"`
	TimezoneAbbreviation string            `json:"timezone_abbreviation"`
	UTCOffsetSeconds     int               `json:"utc_offset_seconds"`
	Elevation            float64           `json:"elevation"`
	Hourly               *SeriesBlock      `json:"hourly,omitempty"`
	Daily                *SeriesBlock      `json:"daily,omitempty"`
	HourlyUnits          map[string]string `json:"hourly_units,omitempty"`
	DailyUnits           map[string]string `json:"daily_units,omitempty"`
}

// Clone returns a deep copy of the forecast.
func (f HumidityForecast) Clone() HumidityForecast {
	f.Hourly = f.Hourly.Clone()
	f.Daily = f.Daily.Clone()
	f.HourlyUnits = maps.Clone(f.HourlyUnits)
	f.DailyUnits = maps.Clone(f.DailyUnits)
	return f
}

// CurrentConditions holds the provider's "current" object. Any field the
// response omits is nil.
type CurrentConditions struct {
	Time               *time.Time `json:"time"`
	Temperature2m      *float64   `json:"temperature_2m"`
	RelativeHumidity2m *float64   `json:"relative_humidity_2m"`
	WeatherCode        *int       `json:"weather_code"`
}

var weatherDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Freezing drizzle (light)",
	57: "Freezing drizzle (dense)",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Freezing rain (light)",
	67: "Freezing rain (heavy)",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// WeatherDescription names a WMO weather interpretation code.
func WeatherDescription(code int) string {
	if d, ok := weatherDescriptions[code]; ok {
		return d
	}
	return fmt.Sprintf("Unknown (code %d)", code)
}

// Description names the weather code, or returns "" when it is missing.
func (c CurrentConditions) Description() string {
	if c.WeatherCode == nil {
		return ""
	}
	return WeatherDescription(*c.WeatherCode)
}

// Clone returns a copy that shares no pointers with c.
func (c CurrentConditions) Clone() CurrentConditions {
	return CurrentConditions{
		Time:               clonePtr(c.Time),
		Temperature2m:      clonePtr(c.Temperature2m),
		RelativeHumidity2m: clonePtr(c.RelativeHumidity2m),
		WeatherCode:        clonePtr(c.WeatherCode),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// LatestHourly reads the last sample of every present hourly series. This is
// the most recent value in the returned window, not a live reading. A missing
// hourly block or an empty time axis yields an empty map.
func LatestHourly(f HumidityForecast) map[string]float64 {
	current := make(map[string]float64)
	if f.Hourly == nil || len(f.Hourly.Time) == 0 {
		return current
	}
	for name, values := range f.Hourly.series {
		if len(values) > 0 {
			current[name] = values[len(values)-1]
		}
	}
	return current
}

// Forecaster fetches humidity forecasts.
type Forecaster interface {
	HumidityForecast(ctx context.Context, lat, lon float64, q ForecastQuery) (HumidityForecast, error)
	CurrentHumidity(ctx context.Context, lat, lon float64, timezone string) (map[string]float64, error)
	CurrentConditions(ctx context.Context, lat, lon float64, timezone string) (CurrentConditions, error)
}
