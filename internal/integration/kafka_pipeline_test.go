//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/adapter/kafka"
	"github.com/couchcryptid/humidity-adviser/internal/adapter/simulator"
	"github.com/couchcryptid/humidity-adviser/internal/config"
	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/observability"
	"github.com/couchcryptid/humidity-adviser/internal/pipeline"
	"github.com/couchcryptid/humidity-adviser/internal/scenario"
	"github.com/couchcryptid/humidity-adviser/internal/simulation"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	testJobTopic    = "test-jobs"
	testResultTopic = "test-results"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// stubEngine answers /simulate with one step per synthesized timestamp of the
// first source, or 422 when the room surface area is 999.
func stubEngine(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.SimulationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.SurfaceArea == 999 {
			http.Error(w, "room rejected", http.StatusUnprocessableEntity)
			return
		}
		ts := []string{"2024-01-01 00:00", "2024-01-01 00:30"}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.SimulationResult{
			Timestamps:       ts,
			RelativeHumidity: []float64{50, 52},
			AbsoluteHumidity: []float64{8.6, 8.9},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRoom() domain.Room {
	return domain.Room{
		SurfaceArea:              30,
		SurfaceAreaUnit:          domain.SquareMetres,
		CeilingHeight:            2.4,
		CeilingHeightUnit:        domain.Metres,
		InternalTemperature:      20,
		InternalTemperatureUnit:  domain.Celsius,
		StartingRelativeHumidity: 50,
		TimeResolutionMinutes:    30,
	}
}

func publishJob(ctx context.Context, t *testing.T, producer *kafkago.Writer, job domain.SimulationJob) {
	t.Helper()
	payload, err := json.Marshal(job)
	require.NoError(t, err)
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{Key: []byte(job.ID), Value: payload}))
}

func readOutcome(ctx context.Context, t *testing.T, consumer *kafkago.Reader) (domain.SimulationOutcome, map[string]string, string) {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from result topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var outcome domain.SimulationOutcome
	require.NoError(t, json.Unmarshal(msg.Value, &outcome), "unmarshal result message")
	return outcome, headers, string(msg.Key)
}

func newConfig(broker string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaJobTopic:      testJobTopic,
		KafkaResultTopic:   testResultTopic,
		KafkaGroupID:       fmt.Sprintf("test-reader-%d", time.Now().UnixNano()),
		BatchSize:          10,
		BatchFlushInterval: 2 * time.Second,
	}
}

func newResultConsumer(broker string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testResultTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
}

// TestKafkaReaderWriter round-trips a job through the reader and an outcome
// through the writer.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testJobTopic)
	createTopic(t, broker, testResultTopic)
	cfg := newConfig(broker)

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testJobTopic}
	t.Cleanup(func() { _ = producer.Close() })
	publishJob(ctx, t, producer, domain.SimulationJob{ID: "job-1", Room: testRoom()})

	// The consumer group may need a rebalance before partitions are assigned.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.JobMessage
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from job topic")
		}
	}
	require.Len(t, batch, 1)
	msg := batch[0]
	assert.Equal(t, []byte("job-1"), msg.Key)
	assert.Equal(t, testJobTopic, msg.Topic)
	require.NotNil(t, msg.Commit, "commit callback should be set")
	require.NoError(t, msg.Commit(ctx))

	job, err := domain.ParseJobMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	outcome := domain.SimulationOutcome{
		JobID:       job.ID,
		Scenario:    domain.DefaultScenario,
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:        7,
		ProcessedAt: time.Now().UTC(),
	}
	require.NoError(t, writer.LoadBatch(ctx, []domain.SimulationOutcome{outcome}))

	consumer := newResultConsumer(broker)
	t.Cleanup(func() { _ = consumer.Close() })

	got, headers, key := readOutcome(ctx, t, consumer)
	assert.Equal(t, "job-1", key)
	assert.Equal(t, "job-1", got.JobID)
	assert.Equal(t, domain.DefaultScenario, headers["scenario"])
	_, err = time.Parse(time.RFC3339, headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")
}

// TestPipelineEndToEnd runs the full consume-simulate-publish loop against a
// stub engine. A job the engine rejects is skipped and the next job still
// produces an outcome.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testJobTopic)
	createTopic(t, broker, testResultTopic)
	cfg := newConfig(broker)

	engine := stubEngine(t)
	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()

	sim := simulator.NewClient(engine.URL, 10*time.Second, metrics, logger)
	runner := simulation.NewRunner(scenario.Default(), sim, metrics, logger)

	reader := kafka.NewReader(cfg, logger)
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, logger)
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(reader, pipeline.NewTransformer(runner), writer, logger, metrics, cfg.BatchSize)

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testJobTopic}
	t.Cleanup(func() { _ = producer.Close() })

	rejected := testRoom()
	rejected.SurfaceArea = 999
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{Key: []byte("broken"), Value: []byte("{not json")}))
	publishJob(ctx, t, producer, domain.SimulationJob{ID: "rejected", Room: rejected})
	publishJob(ctx, t, producer, domain.SimulationJob{
		ID:        "good",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:      1,
		Room:      testRoom(),
	})

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- p.Run(runCtx) }()

	consumer := newResultConsumer(broker)
	t.Cleanup(func() { _ = consumer.Close() })

	got, headers, key := readOutcome(ctx, t, consumer)
	assert.Equal(t, "good", key)
	assert.Equal(t, "good", got.JobID)
	assert.Equal(t, domain.DefaultScenario, got.Scenario)
	assert.Equal(t, 1, got.Days)
	assert.Equal(t, []float64{50, 52}, got.Result.RelativeHumidity)
	assert.Equal(t, domain.DefaultScenario, headers["scenario"])

	require.Eventually(t, p.Ready, 10*time.Second, 100*time.Millisecond)

	stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("pipeline did not stop")
	}
}
