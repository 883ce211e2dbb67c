// Package simulation turns a SimulationJob into a simulated humidity result.
package simulation

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/observability"
	"github.com/couchcryptid/humidity-adviser/internal/scenario"
)

// Runner synthesizes a scenario's sources and submits them with the job's room.
type Runner struct {
	scenarios *scenario.Registry
	simulator domain.Simulator
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewRunner creates a runner over a scenario registry and a simulator.
func NewRunner(scenarios *scenario.Registry, simulator domain.Simulator, metrics *observability.Metrics, logger *slog.Logger) *Runner {
	return &Runner{scenarios: scenarios, simulator: simulator, metrics: metrics, logger: logger}
}

// WithDefaults fills every zero field of job. A zero start is today at 00:00 UTC.
func WithDefaults(job domain.SimulationJob) domain.SimulationJob {
	if job.Scenario == "" {
		job.Scenario = domain.DefaultScenario
	}
	if job.Days == 0 {
		job.Days = domain.DefaultSimulationDays
	}
	if job.ResolutionMinutes == 0 {
		job.ResolutionMinutes = domain.DefaultResolutionMinutes
	}
	if job.StartDate.IsZero() {
		job.StartDate = domain.Today()
	}
	if job.Room.TimeResolutionMinutes == 0 {
		job.Room.TimeResolutionMinutes = domain.DefaultTimeResolutionMinutes
	}
	return job
}

// Request builds the simulation request for job without submitting it.
func (r *Runner) Request(job domain.SimulationJob) (domain.SimulationRequest, error) {
	job = WithDefaults(job)
	sources, err := r.scenarios.Synthesize(job.Scenario, scenario.Window{
		Start:             job.StartDate,
		Days:              job.Days,
		ResolutionMinutes: job.ResolutionMinutes,
	})
	if err != nil {
		return domain.SimulationRequest{}, err
	}
	req := domain.SimulationRequest{Room: job.Room, Sources: sources}
	if err := req.Validate(); err != nil {
		return domain.SimulationRequest{}, err
	}
	return req, nil
}

// Run synthesizes and simulates job.
func (r *Runner) Run(ctx context.Context, job domain.SimulationJob) (domain.SimulationResult, error) {
	job = WithDefaults(job)
	req, err := r.Request(job)
	if err != nil {
		r.metrics.Simulations.WithLabelValues(observability.OutcomeError).Inc()
		return domain.SimulationResult{}, err
	}

	start := time.Now()
	result, err := r.simulator.Simulate(ctx, req)
	if err != nil {
		r.metrics.Simulations.WithLabelValues(observability.OutcomeError).Inc()
		return domain.SimulationResult{}, err
	}

	r.metrics.Simulations.WithLabelValues(observability.OutcomeSuccess).Inc()
	r.logger.Info("simulation finished",
		"job_id", job.ID,
		"scenario", job.Scenario,
		"start_date", job.StartDate.Format(time.DateOnly),
		"days", job.Days,
		"steps", len(result.Timestamps),
		"duration", time.Since(start),
	)
	return result, nil
}
