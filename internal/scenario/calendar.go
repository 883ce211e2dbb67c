// Package scenario synthesizes sparse humidity-emission schedules from
// calendar rules.
package scenario

import (
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
)

// Engine timestamp conventions. Layout is the Go equivalent of Format.
const (
	TimestampFormat = "%Y-%m-%d %H:%M"
	TimestampLayout = "2006-01-02 15:04"
	Timezone        = "UTC"
)

// Sample is one point of the uniform sampling index.
type Sample struct {
	Time    time.Time
	Weekend bool
	Hour    int
	Minute  int
}

// Index builds samples every resolutionMinutes from start. The last sample is
// no later than one resolution step before start+days, so a step that does not
// divide the window leaves a gap shorter than a step at the end. Start is
// interpreted in UTC.
func Index(start time.Time, days, resolutionMinutes int) ([]Sample, error) {
	if days <= 0 {
		return nil, &domain.ValidationError{Field: "days", Message: "must be greater than 0"}
	}
	if resolutionMinutes <= 0 {
		return nil, &domain.ValidationError{Field: "resolution_minutes", Message: "must be greater than 0"}
	}

	start = start.UTC()
	step := time.Duration(resolutionMinutes) * time.Minute
	last := start.AddDate(0, 0, days).Add(-step)

	samples := make([]Sample, 0, max(int(last.Sub(start)/step)+1, 0))
	for t := start; !t.After(last); t = t.Add(step) {
		wd := t.Weekday()
		samples = append(samples, Sample{
			Time:    t,
			Weekend: wd == time.Saturday || wd == time.Sunday,
			Hour:    t.Hour(),
			Minute:  t.Minute(),
		})
	}
	return samples, nil
}
