package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/config"
	"github.com/couchcryptid/humidity-adviser/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured result topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaResultTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes simulation outcomes to the result topic
// in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, outcomes []domain.SimulationOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(outcomes))
	for i := range outcomes {
		msg, err := serializeToMessage(outcomes[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d outcomes: %w", len(msgs), err)
	}
	w.logger.Debug("published outcomes", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an outcome into a Kafka message keyed by job ID.
func serializeToMessage(outcome domain.SimulationOutcome) (kafkago.Message, error) {
	data, err := json.Marshal(outcome)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize simulation outcome: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(outcome.JobID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "scenario", Value: []byte(outcome.Scenario)},
			{Key: "processed_at", Value: []byte(outcome.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
