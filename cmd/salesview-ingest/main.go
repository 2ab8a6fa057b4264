package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	appamqp "salesview/internal/amqp"
	"salesview/internal/config"
	"salesview/internal/ingest"
	"salesview/internal/storage"
)

// One-shot ingestion run: fetch the snapshot, replace the store, announce
// the result on AMQP when configured.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var amqpClient *appamqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRequestQueue, cfg.AMQPEventQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	}

	ctx := context.Background()
	svc := ingest.NewService(ingest.NewSnapshotClient(cfg.SnapshotURL, cfg.FetchTimeout), repo)

	result, err := svc.Run(ctx)
	if err != nil {
		// The store keeps its prior contents; stale data until the next run.
		logger.Error("Ingestion failed", "error", err)
		os.Exit(1)
	}

	if amqpClient != nil {
		msg := appamqp.NewIngestCompletedMessage(result.RunID, result.Records)
		if err := amqpClient.PublishIngestCompleted(ctx, msg); err != nil {
			logger.Error("Failed to publish ingest completed event", "error", err, "run_id", result.RunID)
		}
	}

	logger.Info("Ingestion finished", "run_id", result.RunID, "records", result.Records)
}
