package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"alphawealth/internal/amqp"
	"alphawealth/internal/config"
	apphttp "alphawealth/internal/http"
	applog "alphawealth/internal/log"
	"alphawealth/internal/notify"
	"alphawealth/internal/services"
	"alphawealth/internal/storage"
)

func main() {
	// .env is a local-development convenience; absence is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// The API keeps working without the broker: writes land in the database
	// and only live notification and the sheets mirror degrade.
	var publisher *amqp.Client
	if cfg.AMQPURL != "" {
		publisher, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("AMQP unavailable, change notifications disabled", applog.FieldError, err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	hub := notify.NewHub()
	var tracker *services.Tracker
	if publisher != nil {
		tracker = services.NewTracker(repo, publisher)
	} else {
		tracker = services.NewTracker(repo, nil)
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CacheTTL:           cfg.CacheTTL,
	}, tracker, hub)
	srv.ReadTimeout = 10 * time.Second
	srv.IdleTimeout = 120 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Starting API server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if publisher != nil {
		group.Go(func() error {
			if err := hub.Run(ctx, publisher); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Notification hub stopped", applog.FieldError, err)
			}
			// A broken broker connection should not take the API down.
			return nil
		})
	}

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
