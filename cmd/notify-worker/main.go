package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/catalog/internal/config"
	"github.com/mmynk/catalog/internal/notify"
	"github.com/mmynk/catalog/internal/storage/sqlite"
	"github.com/mmynk/catalog/pkg/logging"
)

func main() {
	// Load .env for local development; missing is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)
	slog.Info("Starting notify-worker")

	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer store.Close()

	handler := notify.NewHandler(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var publisher notify.Publisher = notify.NewDirectPublisher(handler)
	if cfg.AMQPURL != "" {
		amqpClient, err := notify.NewAMQPClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("Failed to initialize AMQP publisher, storing reminders directly", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}

		go func() {
			err := notify.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, handler.Handle)
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Notification consumer stopped", "error", err)
			}
			cancel()
		}()
		slog.Info("Consuming notification events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		slog.Info("AMQP disabled - only renewal reminders will run")
	}

	reminder := notify.NewRenewalReminder(store, publisher, nil)
	sweep := func() {
		if _, err := reminder.Run(ctx); err != nil {
			slog.Error("Renewal reminder sweep failed", "error", err)
		}
	}
	sweep()

	ticker := time.NewTicker(cfg.ReminderInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("Context cancelled")
	}

	cancel()
	slog.Info("Worker shutdown complete")
}
