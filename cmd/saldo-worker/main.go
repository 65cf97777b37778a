package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"saldo/internal/amqp"
	"saldo/internal/config"
	applog "saldo/internal/log"
)

// saldo-worker drains the reminder queue and delivers each message. The
// current delivery channel is the structured log; swapping in push or
// e-mail delivery only means replacing deliver below.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(slog.LevelInfo, applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting saldo-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the reminder worker")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deliver := newDeliverer(logger)

	logger.Info("Consuming reminders", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeReminders(ctx, deliver); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}

// deliveryKey identifies one reminder delivery for duplicate suppression.
type deliveryKey struct {
	tag  string
	days int
}

// isDuplicate reports whether next repeats the previous delivery. A
// redelivered message carries both the same tag and the same day count;
// the tag alone is not enough, since offsets like 3 and 1 days
// legitimately fire the same tag twice.
func isDuplicate(last, next deliveryKey) bool {
	return next.tag != "" && next == last
}

// newDeliverer builds the message handler, dropping requeue duplicates.
func newDeliverer(logger *applog.Logger) func(*amqp.ReminderMessage) error {
	var last deliveryKey
	return func(msg *amqp.ReminderMessage) error {
		next := deliveryKey{tag: msg.Tag, days: msg.DaysUntilDue}
		if isDuplicate(last, next) {
			logger.Debug("Skipping duplicate reminder", "tag", msg.Tag, applog.FieldDaysUntil, msg.DaysUntilDue)
			return nil
		}
		last = next
		logger.Info("Reminder delivered",
			"tag", msg.Tag,
			"title", msg.Title,
			"body", msg.Body,
			applog.FieldDaysUntil, msg.DaysUntilDue)
		return nil
	}
}
