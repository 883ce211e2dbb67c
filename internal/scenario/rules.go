package scenario

import (
	"slices"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
)

// DayType selects which days a rule applies to.
type DayType int

const (
	AnyDay DayType = iota
	Weekdays
	Weekends
)

func (d DayType) matches(s Sample) bool {
	switch d {
	case Weekdays:
		return !s.Weekend
	case Weekends:
		return s.Weekend
	default:
		return true
	}
}

// ClockPredicate reports whether a time of day is active.
type ClockPredicate func(hour, minute int) bool

// Rule activates a source on matching days when its predicate holds.
type Rule struct {
	Days   DayType
	Active ClockPredicate
}

// AllDay is active at every time of day.
func AllDay() ClockPredicate {
	return func(int, int) bool { return true }
}

// Before is active strictly before the given hour.
func Before(hour int) ClockPredicate {
	return func(h, _ int) bool { return h < hour }
}

// Between is active from hour from (inclusive) to hour to (exclusive).
func Between(from, to int) ClockPredicate {
	return func(h, _ int) bool { return h >= from && h < to }
}

// At is active during hour at the listed minute marks only.
func At(hour int, minutes ...int) ClockPredicate {
	return func(h, m int) bool { return h == hour && slices.Contains(minutes, m) }
}

// Source describes one emitter: a constant rate while any rule matches.
type Source struct {
	Name  string
	Rate  float64
	Unit  domain.EmissionUnit
	Rules []Rule
}

func (s Source) activeAt(sample Sample) bool {
	for _, r := range s.Rules {
		if r.Days.matches(sample) && r.Active(sample.Hour, sample.Minute) {
			return true
		}
	}
	return false
}

// Synthesize emits one entry per active sample, in index order. Inactive
// samples are omitted.
func (s Source) Synthesize(samples []Sample) domain.HumiditySource {
	out := domain.HumiditySource{
		Name:                 s.Name,
		MaxEmissionsRateUnit: s.Unit,
		Timestamps:           []string{},
		TimestampFormat:      TimestampFormat,
		Timezone:             Timezone,
		Values:               []float64{},
		ValuesUnit:           s.Unit,
	}
	for _, sample := range samples {
		if !s.activeAt(sample) {
			continue
		}
		out.Timestamps = append(out.Timestamps, sample.Time.Format(TimestampLayout))
		out.Values = append(out.Values, s.Rate)
	}
	return out
}
