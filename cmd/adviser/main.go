package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/humidity-adviser/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/humidity-adviser/internal/adapter/kafka"
	"github.com/couchcryptid/humidity-adviser/internal/app"
	"github.com/couchcryptid/humidity-adviser/internal/config"
	"github.com/couchcryptid/humidity-adviser/internal/observability"
	"github.com/couchcryptid/humidity-adviser/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	svc := app.NewServices(cfg, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ready sharedobs.ReadinessChecker = httpadapter.AlwaysReady{}
	var closers []func() error

	// Batch simulation over Kafka is feature-flagged via KAFKA_ENABLED.
	if cfg.KafkaEnabled {
		reader := kafkaadapter.NewReader(cfg, logger)
		writer := kafkaadapter.NewWriter(cfg, logger)
		closers = append(closers, reader.Close, writer.Close)

		p := pipeline.New(reader, pipeline.NewTransformer(svc.Runner), writer, logger, metrics, cfg.BatchSize)
		ready = p
		logger.Info("kafka pipeline enabled",
			"brokers", cfg.KafkaBrokers,
			"job_topic", cfg.KafkaJobTopic,
			"result_topic", cfg.KafkaResultTopic,
		)

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("kafka pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Dependencies{
		Resolver:   svc.Resolver,
		Forecaster: svc.Forecaster,
		Scenarios:  svc.Scenarios,
		Runner:     svc.Runner,
		Ready:      ready,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
