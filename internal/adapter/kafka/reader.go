package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/config"
	"github.com/couchcryptid/humidity-adviser/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes simulation jobs from a Kafka topic.
// It implements pipeline.BatchExtractor.
type Reader struct {
	reader        *kafkago.Reader
	flushInterval time.Duration
	logger        *slog.Logger
}

// NewReader creates a consumer-group reader for the configured job topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaJobTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	flush := cfg.BatchFlushInterval
	if flush <= 0 {
		flush = 500 * time.Millisecond
	}
	return &Reader{reader: r, flushInterval: flush, logger: logger}
}

// ExtractBatch fetches up to batchSize messages, returning early once the
// flush interval has passed. An empty batch with a nil error means nothing
// arrived in time. Offsets are committed through each message's Commit.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.JobMessage, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.flushInterval)
	defer cancel()

	batch := make([]domain.JobMessage, 0, batchSize)
	for len(batch) < batchSize {
		msg, err := r.reader.FetchMessage(fetchCtx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return nil, err
		}
		batch = append(batch, r.mapMessageToJobMessage(msg))
	}
	if len(batch) > 0 {
		r.logger.Debug("extracted batch", "size", len(batch))
	}
	return batch, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

func (r *Reader) mapMessageToJobMessage(msg kafkago.Message) domain.JobMessage {
	job := mapMessageToJobMessage(msg)
	job.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return job
}

// mapMessageToJobMessage converts a Kafka message without binding a commit.
func mapMessageToJobMessage(msg kafkago.Message) domain.JobMessage {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.JobMessage{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
