package domain

import (
	"context"
	"fmt"
)

// AreaUnit is the unit of a room's floor area.
type AreaUnit string

const (
	SquareMetres AreaUnit = "m2"
	SquareFeet   AreaUnit = "ft2"
)

// LengthUnit is the unit of a room's ceiling height.
type LengthUnit string

const (
	Metres LengthUnit = "m"
	Feet   LengthUnit = "ft"
)

// TemperatureUnit is the unit of the internal room temperature.
type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "c"
	Kelvin     TemperatureUnit = "k"
	Fahrenheit TemperatureUnit = "f"
)

// EmissionUnit is the unit of a humidity source's emission rate.
type EmissionUnit string

const (
	GramsPerHour     EmissionUnit = "g/h"
	KilogramsPerHour EmissionUnit = "kg/h"
	PoundsPerHour    EmissionUnit = "lb/h"
)

// DefaultTimeResolutionMinutes is the engine's time step when none is set.
const DefaultTimeResolutionMinutes = 30

func (u AreaUnit) valid() bool        { return u == SquareMetres || u == SquareFeet }
func (u LengthUnit) valid() bool      { return u == Metres || u == Feet }
func (u TemperatureUnit) valid() bool { return u == Celsius || u == Kelvin || u == Fahrenheit }
func (u EmissionUnit) valid() bool {
	return u == GramsPerHour || u == KilogramsPerHour || u == PoundsPerHour
}

// HumiditySource is a sparse emission-rate series: only active samples are
// listed. Timestamps and Values are parallel.
type HumiditySource struct {
	Name                 string       `json:"name"`
	MaxEmissionsRateUnit EmissionUnit `json:"max_emissions_rate_unit"`
	Timestamps           []string     `json:"timestamps"`
	TimestampFormat      string       `json:"timestamp_format"`
	Timezone             string       `json:"timezone"`
	Values               []float64    `json:"values"`
	ValuesUnit           EmissionUnit `json:"values_unit"`
}

// Validate checks units and that timestamps and values line up.
func (s HumiditySource) Validate() error {
	if s.Name == "" {
		return invalid("sources.name", "must not be empty")
	}
	if !s.MaxEmissionsRateUnit.valid() {
		return invalid("sources.max_emissions_rate_unit", "unsupported unit %q", s.MaxEmissionsRateUnit)
	}
	if !s.ValuesUnit.valid() {
		return invalid("sources.values_unit", "unsupported unit %q", s.ValuesUnit)
	}
	if len(s.Timestamps) != len(s.Values) {
		return invalid("sources", "%q has %d timestamps and %d values", s.Name, len(s.Timestamps), len(s.Values))
	}
	return nil
}

// Room is the geometry and starting state of a simulated room. Each quantity
// carries its own unit; the engine interprets them.
type Room struct {
	SurfaceArea              float64         `json:"surface_area" yaml:"surface-area"`
	SurfaceAreaUnit          AreaUnit        `json:"surface_area_unit" yaml:"surface-area-unit"`
	CeilingHeight            float64         `json:"ceiling_height" yaml:"ceiling-height"`
	CeilingHeightUnit        LengthUnit      `json:"ceiling_height_unit" yaml:"ceiling-height-unit"`
	InternalTemperature      float64         `json:"internal_temperature" yaml:"internal-temperature"`
	InternalTemperatureUnit  TemperatureUnit `json:"internal_temperature_unit" yaml:"internal-temperature-unit"`
	StartingRelativeHumidity float64         `json:"starting_relative_humidity" yaml:"starting-relative-humidity"`
	TimeResolutionMinutes    int             `json:"time_resolution_minutes" yaml:"time-resolution-minutes"`
}

// Validate checks every room constraint.
func (r Room) Validate() error {
	if !(r.SurfaceArea > 0) {
		return invalid("surface_area", "must be greater than 0, got %v", r.SurfaceArea)
	}
	if !r.SurfaceAreaUnit.valid() {
		return invalid("surface_area_unit", "unsupported unit %q", r.SurfaceAreaUnit)
	}
	if !(r.CeilingHeight > 0) {
		return invalid("ceiling_height", "must be greater than 0, got %v", r.CeilingHeight)
	}
	if !r.CeilingHeightUnit.valid() {
		return invalid("ceiling_height_unit", "unsupported unit %q", r.CeilingHeightUnit)
	}
	if !r.InternalTemperatureUnit.valid() {
		return invalid("internal_temperature_unit", "unsupported unit %q", r.InternalTemperatureUnit)
	}
	if !(r.StartingRelativeHumidity >= 0 && r.StartingRelativeHumidity <= 100) {
		return invalid("starting_relative_humidity", "must be between 0 and 100, got %v", r.StartingRelativeHumidity)
	}
	if r.TimeResolutionMinutes <= 0 {
		return invalid("time_resolution_minutes", "must be greater than 0, got %d", r.TimeResolutionMinutes)
	}
	return nil
}

// SimulationRequest is the body of the engine's /simulate call.
type SimulationRequest struct {
	Room    `yaml:",inline"`
	Sources []HumiditySource `json:"sources" yaml:"sources"`
}

// Validate checks the room and every source.
func (r SimulationRequest) Validate() error {
	if err := r.Room.Validate(); err != nil {
		return err
	}
	for _, s := range r.Sources {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SimulationResult holds one entry per simulated time step in each series.
type SimulationResult struct {
	Timestamps       []string  `json:"timestamps"`
	RelativeHumidity []float64 `json:"relative_humidity"`
	AbsoluteHumidity []float64 `json:"absolute_humidity"`
}

// Validate checks that the three series have equal length.
func (r SimulationResult) Validate() error {
	if len(r.RelativeHumidity) != len(r.Timestamps) || len(r.AbsoluteHumidity) != len(r.Timestamps) {
		return fmt.Errorf("result series lengths differ: %d timestamps, %d relative, %d absolute",
			len(r.Timestamps), len(r.RelativeHumidity), len(r.AbsoluteHumidity))
	}
	return nil
}

// Simulator runs a room humidity simulation.
type Simulator interface {
	Simulate(ctx context.Context, req SimulationRequest) (SimulationResult, error)
}
