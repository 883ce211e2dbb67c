package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	DefaultScenario          = "one-bed-flat"
	DefaultSimulationDays    = 7
	DefaultResolutionMinutes = 15
)

// SimulationJob asks for one scenario to be synthesized and simulated in a
// room. Zero fields take the defaults above; a zero StartDate means today.
type SimulationJob struct {
	ID                string    `json:"id,omitempty"`
	Scenario          string    `json:"scenario,omitempty"`
	StartDate         time.Time `json:"start_date,omitzero"`
	Days              int       `json:"days,omitempty"`
	ResolutionMinutes int       `json:"resolution_minutes,omitempty"`
	Room              Room      `json:"room"`
}

// UnmarshalJSON accepts start_date as RFC 3339 or as a YYYY-MM-DD date.
func (j *SimulationJob) UnmarshalJSON(data []byte) error {
	type plain SimulationJob
	aux := struct {
		*plain
		StartDate string `json:"start_date,omitempty"`
	}{plain: (*plain)(j)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	j.StartDate = time.Time{}
	if aux.StartDate == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, aux.StartDate)
	if err != nil {
		if t, err = time.Parse(time.DateOnly, aux.StartDate); err != nil {
			return invalid("start_date", "must be RFC 3339 or YYYY-MM-DD, got %q", aux.StartDate)
		}
	}
	j.StartDate = t
	return nil
}

// JobMessage is an unprocessed message from the job topic.
type JobMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// SimulationOutcome is what the pipeline publishes for a finished job.
type SimulationOutcome struct {
	JobID       string           `json:"job_id"`
	Scenario    string           `json:"scenario"`
	StartDate   time.Time        `json:"start_date"`
	Days        int              `json:"days"`
	Result      SimulationResult `json:"result"`
	ProcessedAt time.Time        `json:"processed_at"`
}

// ParseJobMessage decodes a job message. Without an explicit ID the message
// key is used, then topic/partition/offset.
func ParseJobMessage(msg JobMessage) (SimulationJob, error) {
	var job SimulationJob
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		return SimulationJob{}, fmt.Errorf("parse simulation job: %w", err)
	}
	if job.ID == "" {
		job.ID = string(msg.Key)
	}
	if job.ID == "" {
		job.ID = fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
	}
	return job, nil
}

// NewSimulationOutcome stamps a finished job with the current clock time.
func NewSimulationOutcome(job SimulationJob, result SimulationResult) SimulationOutcome {
	return SimulationOutcome{
		JobID:       job.ID,
		Scenario:    job.Scenario,
		StartDate:   job.StartDate,
		Days:        job.Days,
		Result:      result,
		ProcessedAt: clock.Now().UTC(),
	}
}
