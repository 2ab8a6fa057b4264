package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	appamqp "salesview/internal/amqp"
	"salesview/internal/config"
	"salesview/internal/ingest"
	"salesview/internal/storage"
)

// Long-running worker: consumes ingest requests from AMQP and reloads the
// store for each one, publishing a completion event per run.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting salesview-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the ingest worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRequestQueue, cfg.AMQPEventQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	svc := ingest.NewService(ingest.NewSnapshotClient(cfg.SnapshotURL, cfg.FetchTimeout), repo)

	handler := func(msg *appamqp.IngestRequestMessage) error {
		logger.Info("Ingest request received", "run_id", msg.RunID, "requested_by", msg.RequestedBy)

		result, err := svc.Run(ctx)
		if err != nil {
			// Leave the store as-is; the message is requeued by the consumer.
			return err
		}

		event := appamqp.NewIngestCompletedMessage(result.RunID, result.Records)
		if err := amqpClient.PublishIngestCompleted(ctx, event); err != nil {
			logger.Error("Failed to publish ingest completed event", "error", err, "run_id", result.RunID)
		}
		return nil
	}

	if err := amqpClient.ConsumeIngestRequests(ctx, handler); err != nil && err != context.Canceled {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped")
}
