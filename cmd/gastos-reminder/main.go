package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gastos/internal/amqp"
	"gastos/internal/config"
	"gastos/internal/services"
	"gastos/internal/storage"
	"gastos/internal/worker"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting gastos-reminder")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	repo, err := openRepository(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer repo.Close()

	// Without a broker the worker still sweeps, logging each reminder.
	var publisher worker.ReminderPublisher = logPublisher{}
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in log-only mode", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - reminders will only be logged")
	}

	upcoming := services.NewUpcomingService(repo, repo)
	w := worker.NewReminderWorker(repo, upcoming, publisher,
		cfg.HorizonMonths, cfg.ReminderLeadDays, cfg.SweepConcurrency)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	logger.Info("Reminder worker configured",
		"interval", cfg.ReminderInterval,
		"lead_days", cfg.ReminderLeadDays,
		"horizon_months", cfg.HorizonMonths,
		"backend", cfg.DataBackend)

	if err := w.Run(ctx, cfg.ReminderInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Reminder worker stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("Reminder worker stopped gracefully")
}

// logPublisher stands in for AMQP when no broker is configured.
type logPublisher struct{}

func (logPublisher) PublishDueReminder(ctx context.Context, msg *amqp.DueReminderMessage) error {
	slog.InfoContext(ctx, "Due reminder",
		"user_id", msg.UserID,
		"template_id", msg.TemplateID,
		"description", msg.Description,
		"next_date", msg.NextDate,
		"days_until_due", msg.DaysUntilDue,
		"due_message", msg.DueMessage)
	return nil
}

func openRepository(cfg *config.Config) (storage.Repository, error) {
	switch cfg.DataBackend {
	case "postgres":
		return storage.NewPostgresRepository(context.Background(), cfg.DatabaseURL)
	case "memory":
		return storage.NewMemoryRepository(), nil
	default:
		return storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	}
}
