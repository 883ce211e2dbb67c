package openmeteo

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
)

const (
	hourlyTimeLayout = "2006-01-02T15:04"
	dailyTimeLayout  = "2006-01-02"
)

// Open-Meteo API response types.

type forecastResponse struct {
	Latitude             float64                    `json:"latitude"`
	Longitude            float64                    `json:"longitude"`
	Timezone             string                     `json:"timezone"`
	TimezoneAbbreviation string                     `json:"timezone_abbreviation"`
	UTCOffsetSeconds     int                        `json:"utc_offset_seconds"`
	Elevation            float64                    `json:"elevation"`
	HourlyUnits          map[string]string          `json:"hourly_units"`
	Hourly               map[string]json.RawMessage `json:"hourly"`
	DailyUnits           map[string]string          `json:"daily_units"`
	Daily                map[string]json.RawMessage `json:"daily"`
	Current              *currentBlock              `json:"current"`
}

type currentBlock struct {
	Time               *string  `json:"time"`
	Temperature2m      *float64 `json:"temperature_2m"`
	RelativeHumidity2m *float64 `json:"relative_humidity_2m"`
	WeatherCode        *int     `json:"weather_code"`
}

func (r forecastResponse) zone() *time.Location {
	return time.FixedZone(r.TimezoneAbbreviation, r.UTCOffsetSeconds)
}

// toForecast converts the raw response, keeping only requested series.
func (r forecastResponse) toForecast(q domain.ForecastQuery) (domain.HumidityForecast, error) {
	f := domain.HumidityForecast{
		Latitude:             r.Latitude,
		Longitude:            r.Longitude,
		Timezone:             r.Timezone,
		TimezoneAbbreviation: r.TimezoneAbbreviation,
		UTCOffsetSeconds:     r.UTCOffsetSeconds,
		Elevation:            r.Elevation,
	}

	var err error
	if len(q.Hourly) > 0 && r.Hourly != nil {
		if f.Hourly, err = parseBlock("hourly", r.Hourly, q.Hourly, hourlyTimeLayout, r.zone()); err != nil {
			return domain.HumidityForecast{}, err
		}
		f.HourlyUnits = r.HourlyUnits
	}
	if len(q.Daily) > 0 && r.Daily != nil {
		if f.Daily, err = parseBlock("daily", r.Daily, q.Daily, dailyTimeLayout, r.zone()); err != nil {
			return domain.HumidityForecast{}, err
		}
		f.DailyUnits = r.DailyUnits
	}
	return f, nil
}

// parseBlock decodes the time axis and every requested series present in raw.
// A null sample or a length mismatch fails the whole block.
func parseBlock(block string, raw map[string]json.RawMessage, fields []string, layout string, loc *time.Location) (*domain.SeriesBlock, error) {
	var stamps []string
	if t, ok := raw["time"]; ok {
		if err := json.Unmarshal(t, &stamps); err != nil {
			return nil, fmt.Errorf("%s.time: %w", block, err)
		}
	}
	times := make([]time.Time, len(stamps))
	for i, s := range stamps {
		ts, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			return nil, fmt.Errorf("%s.time[%d]: %w", block, i, err)
		}
		times[i] = ts
	}

	series := make(map[string][]float64, len(fields))
	for _, name := range fields {
		data, ok := raw[name]
		if !ok {
			continue
		}
		var samples []*float64
		if err := json.Unmarshal(data, &samples); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", block, name, err)
		}
		values := make([]float64, len(samples))
		for i, v := range samples {
			if v == nil {
				return nil, fmt.Errorf("%s.%s[%d]: missing value", block, name, i)
			}
			values[i] = *v
		}
		series[name] = values
	}

	b, err := domain.NewSeriesBlock(times, series)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", block, err)
	}
	return b, nil
}

func (c *currentBlock) toConditions(loc *time.Location) (domain.CurrentConditions, error) {
	if c == nil {
		return domain.CurrentConditions{}, nil
	}
	out := domain.CurrentConditions{
		Temperature2m:      c.Temperature2m,
		RelativeHumidity2m: c.RelativeHumidity2m,
		WeatherCode:        c.WeatherCode,
	}
	if c.Time != nil {
		ts, err := time.ParseInLocation(hourlyTimeLayout, *c.Time, loc)
		if err != nil {
			return domain.CurrentConditions{}, fmt.Errorf("current.time: %w", err)
		}
		out.Time = &ts
	}
	return out, nil
}
