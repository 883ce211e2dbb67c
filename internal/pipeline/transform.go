package pipeline

import (
	"context"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/simulation"
)

// JobRunner runs one simulation job. *simulation.Runner satisfies it.
type JobRunner interface {
	Run(ctx context.Context, job domain.SimulationJob) (domain.SimulationResult, error)
}

var _ JobRunner = (*simulation.Runner)(nil)

// JobTransformer implements Transformer by decoding the job and running it.
type JobTransformer struct {
	runner JobRunner
}

// NewTransformer creates a JobTransformer.
func NewTransformer(runner JobRunner) *JobTransformer {
	return &JobTransformer{runner: runner}
}

func (t *JobTransformer) Transform(ctx context.Context, msg domain.JobMessage) (domain.SimulationOutcome, error) {
	job, err := domain.ParseJobMessage(msg)
	if err != nil {
		return domain.SimulationOutcome{}, err
	}
	job = simulation.WithDefaults(job)

	result, err := t.runner.Run(ctx, job)
	if err != nil {
		return domain.SimulationOutcome{}, err
	}
	return domain.NewSimulationOutcome(job, result), nil
}
