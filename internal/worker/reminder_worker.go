// Package worker sweeps every user's projection and publishes reminders
// for occurrences that are due soon.
package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/services"
	"gastos/internal/storage"
)

// ReminderPublisher is the outbound side of a sweep; the AMQP client
// satisfies it in production.
type ReminderPublisher interface {
	PublishDueReminder(ctx context.Context, msg *amqp.DueReminderMessage) error
}

// ReminderWorker projects every user's upcoming occurrences and publishes
// a reminder for each one due within leadDays (overdue included). A
// failing user never aborts the sweep.
type ReminderWorker struct {
	users         storage.UserSource
	upcoming      *services.UpcomingService
	publisher     ReminderPublisher
	horizonMonths int
	leadDays      int
	concurrency   int
}

func NewReminderWorker(users storage.UserSource, upcoming *services.UpcomingService, publisher ReminderPublisher, horizonMonths, leadDays, concurrency int) *ReminderWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ReminderWorker{
		users:         users,
		upcoming:      upcoming,
		publisher:     publisher,
		horizonMonths: horizonMonths,
		leadDays:      leadDays,
		concurrency:   concurrency,
	}
}

// Sweep runs one full pass over all users and returns how many reminders
// were published.
func (w *ReminderWorker) Sweep(ctx context.Context, now time.Time) (int, error) {
	userIDs, err := w.users.ListUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	var published atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, userID := range userIDs {
		g.Go(func() error {
			n, err := w.sweepUser(ctx, userID, now)
			if err != nil {
				slog.ErrorContext(ctx, "Reminder sweep failed for user",
					"user_id", userID,
					"error", err)
				return nil
			}
			published.Add(int64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(published.Load()), err
	}

	slog.InfoContext(ctx, "Reminder sweep complete",
		"users", len(userIDs),
		"published", published.Load())

	return int(published.Load()), nil
}

func (w *ReminderWorker) sweepUser(ctx context.Context, userID string, now time.Time) (int, error) {
	occs, err := w.upcoming.Upcoming(ctx, userID, w.horizonMonths, now)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, occ := range occs {
		if occ.DaysUntilDue > w.leadDays {
			// Sorted by due date, nothing later qualifies either.
			break
		}
		if err := w.publisher.PublishDueReminder(ctx, reminderFor(occ)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish reminder",
				"user_id", userID,
				"template_id", occ.TemplateID,
				"error", err)
			continue
		}
		published++
	}
	return published, nil
}

func reminderFor(occ core.VirtualOccurrence) *amqp.DueReminderMessage {
	return &amqp.DueReminderMessage{
		UserID:       occ.UserID,
		TemplateID:   occ.TemplateID,
		Description:  occ.Description,
		AmountCents:  occ.Amount.Cents,
		NextDate:     occ.NextDate.String(),
		DaysUntilDue: occ.DaysUntilDue,
		DueMessage:   occ.DueMessage,
		Timestamp:    time.Now(),
	}
}

// Run sweeps immediately and then on every tick until ctx is done.
func (w *ReminderWorker) Run(ctx context.Context, interval time.Duration) error {
	if _, err := w.Sweep(ctx, time.Now()); err != nil {
		slog.ErrorContext(ctx, "Initial reminder sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Sweep(ctx, time.Now()); err != nil {
				slog.ErrorContext(ctx, "Reminder sweep failed", "error", err)
			}
		}
	}
}
