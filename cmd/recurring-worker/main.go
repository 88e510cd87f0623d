package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"troskovi/internal/amqp"
	"troskovi/internal/config"
	"troskovi/internal/currency"
	"troskovi/internal/services"
	"troskovi/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting recurring-worker")

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

	converter, err := currency.NewConverter(cfg.EurToRsdRate)
	if err != nil {
		logger.Error("Invalid exchange rate", "error", err, "rate", cfg.EurToRsdRate)
		os.Exit(1)
	}

	// Materialized records go through the same publisher path as manual
	// ones, so they also reach the spreadsheet backup.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
	}

	processor := services.NewRecurringProcessor(
		repo,
		services.NewExpenseService(repo, converter, publisher),
		services.NewIncomeService(repo, converter, publisher),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catch up immediately on start, then run once a day at the configured
	// hour.
	runOnce(ctx, processor)

	for {
		next := nextRunAfter(time.Now(), cfg.RecurringHour)
		logger.Info("Next recurring run scheduled", "at", next)

		select {
		case <-ctx.Done():
			logger.Info("Recurring worker stopped")
			return
		case <-time.After(time.Until(next)):
			runOnce(ctx, processor)
		}
	}
}

func runOnce(ctx context.Context, processor *services.RecurringProcessor) {
	runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	result, err := processor.ProcessDue(runCtx, time.Now())
	if err != nil {
		slog.ErrorContext(runCtx, "Recurring run failed", "error", err)
		return
	}
	slog.InfoContext(runCtx, "Recurring run completed",
		"found", result.Found,
		"processed", result.Processed,
		"deactivated", result.Deactivated,
		"failed", result.Failed)
}
