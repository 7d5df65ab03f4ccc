package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"alphawealth/internal/amqp"
	"alphawealth/internal/config"
	applog "alphawealth/internal/log"
	gsheet "alphawealth/internal/sheets/google"
	"alphawealth/internal/storage"
	"alphawealth/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Without a spreadsheet there is nothing to mirror; exit cleanly so a
	// supervisor doesn't restart-loop a misconfigured deployment.
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("No GOOGLE_SPREADSHEET_ID configured, export worker has nothing to do")
		return
	}

	repo, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	sheetsClient, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Error("Failed to connect to AMQP", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Durable queue bound to transaction events only; it buffers changes
	// across worker restarts.
	if err := amqpClient.DeclareQueue(cfg.AMQPQueue, "transactions.*"); err != nil {
		logger.Error("Failed to declare export queue", applog.FieldError, err, "queue", cfg.AMQPQueue)
		os.Exit(1)
	}

	exportWorker := worker.NewExportWorker(repo, sheetsClient, cfg.ExportBatchSize)

	// Rows that changed while the worker was down are still marked pending;
	// drain them before consuming live events.
	if err := exportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup export check failed", applog.FieldError, err)
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		err := amqpClient.Consume(ctx, cfg.AMQPQueue, func(ev *amqp.ChangeEvent) error {
			return exportWorker.HandleChangeEvent(ctx, ev)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		err := exportWorker.RunSweep(ctx, cfg.ExportSweepInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	logger.Info("Export worker running",
		"queue", cfg.AMQPQueue,
		"batch_size", cfg.ExportBatchSize,
		"sweep_interval", cfg.ExportSweepInterval.String())

	if err := group.Wait(); err != nil {
		logger.Error("Worker error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
