// Package notify schedules best-effort expense reminders.
//
// Timers live only in process memory, keyed by expense id. There is no
// persisted timer registry: a restart empties it, and the daily rescan
// (plus one rescan at startup) rebuilds timers from persisted expenses.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"saldo/internal/amqp"
	"saldo/internal/core"
)

// Reminder is the payload handed to a Notifier when an alarm fires.
// Tag is the expense id, used only for de-duplication downstream.
type Reminder struct {
	Tag          string
	Title        string
	Body         string
	DaysUntilDue int
}

// NewReminder builds the payload for an expense alarm.
func NewReminder(e core.Expense, daysUntilDue int) Reminder {
	return Reminder{
		Tag:          e.ID,
		Title:        fmt.Sprintf("Reminder: %s", e.Name),
		Body:         fmt.Sprintf("%s vence em %d dia(s): %s", e.Name, daysUntilDue, e.Amount.Format()),
		DaysUntilDue: daysUntilDue,
	}
}

// Notifier delivers a fired reminder. Delivery is best-effort; a failed
// delivery never fails the operation that caused it.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// LogNotifier writes reminders to the structured log. It is the fallback
// when no AMQP broker is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Notify(_ context.Context, r Reminder) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Reminder",
		"tag", r.Tag,
		"title", r.Title,
		"body", r.Body,
		"days_until_due", r.DaysUntilDue)
	return nil
}

// AMQPNotifier publishes reminders for the delivery worker.
type AMQPNotifier struct {
	Client *amqp.Client
}

func (n *AMQPNotifier) Notify(ctx context.Context, r Reminder) error {
	msg := amqp.NewReminderMessage(r.Tag, r.Title, r.Body, r.DaysUntilDue)
	if err := n.Client.PublishReminder(ctx, msg); err != nil {
		return fmt.Errorf("publish reminder: %w", err)
	}
	return nil
}
