package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// BatchExtractor reads up to batchSize job messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.JobMessage, error)
}

// Transformer runs one job message to completion.
type Transformer interface {
	Transform(ctx context.Context, msg domain.JobMessage) (domain.SimulationOutcome, error)
}

// BatchLoader writes finished outcomes to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, outcomes []domain.SimulationOutcome) error
}

// Pipeline orchestrates the extract-simulate-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has loaded at least one batch.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any jobs yet")
	}
	return nil
}

// Ready reports whether a batch has been loaded.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Kafka failures back off from initialBackoff, doubling up to maxBackoff.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Run consumes job batches until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	wait := initialBackoff
	for ctx.Err() == nil {
		ok, healthy := p.runBatch(ctx)
		if !ok {
			break
		}
		if healthy {
			wait = initialBackoff
			continue
		}
		if !retry.SleepWithContext(ctx, wait) {
			break
		}
		wait = retry.NextBackoff(wait, maxBackoff)
	}
	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// runBatch handles one batch. ok is false once the pipeline must stop;
// healthy is false when Kafka failed and the caller should back off.
func (p *Pipeline) runBatch(ctx context.Context) (ok, healthy bool) {
	start := time.Now()

	jobs, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false, false
		}
		p.logger.Error("extract batch failed", "error", err)
		return true, false
	}
	if len(jobs) == 0 {
		return ctx.Err() == nil, true
	}
	p.metrics.JobsConsumed.Add(float64(len(jobs)))
	p.metrics.BatchSize.Observe(float64(len(jobs)))

	outcomes, done, ok := p.simulate(ctx, jobs)
	if !ok {
		return false, false
	}
	if len(outcomes) == 0 {
		return true, true
	}

	if err := p.loader.LoadBatch(ctx, outcomes); err != nil {
		if ctx.Err() != nil {
			return false, false
		}
		p.logger.Error("load batch failed", "error", err, "batch_size", len(outcomes))
		return true, false
	}
	p.metrics.ResultsProduced.Add(float64(len(outcomes)))
	for _, msg := range done {
		p.commit(ctx, msg)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return true, true
}

// simulate runs every job of the batch. A failed job is committed and
// skipped, never retried; done holds the messages behind outcomes.
func (p *Pipeline) simulate(ctx context.Context, jobs []domain.JobMessage) (outcomes []domain.SimulationOutcome, done []domain.JobMessage, ok bool) {
	for _, msg := range jobs {
		out, err := p.transformer.Transform(ctx, msg)
		if err == nil {
			outcomes = append(outcomes, out)
			done = append(done, msg)
			continue
		}
		if ctx.Err() != nil {
			return nil, nil, false
		}
		p.logger.Warn("simulation job failed, skipping message",
			"error", err,
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		p.metrics.JobErrors.Inc()
		p.commit(ctx, msg)
	}
	return outcomes, done, true
}

func (p *Pipeline) commit(ctx context.Context, msg domain.JobMessage) {
	if msg.Commit == nil {
		return
	}
	if err := msg.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
	}
}
