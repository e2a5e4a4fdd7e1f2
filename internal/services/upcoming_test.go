package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gastos/internal/core"
	"gastos/internal/storage"
)

func TestUpcomingProjectsStoredTemplates(t *testing.T) {
	repo := storage.NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.CreateTemplate(ctx, core.RecurringTemplate{
		UserID:      "u1",
		Amount:      core.Money{Cents: 50000},
		Description: "Renta",
		AnchorDate:  core.NewDate(2024, 1, 15),
		Frequency:   core.Monthly,
	})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	// A realized row for March suppresses that occurrence.
	_, err = repo.CreateExpense(ctx, core.Expense{
		UserID:      "u1",
		Amount:      core.Money{Cents: 50000},
		Description: "Renta (2024-03-15)",
		Date:        core.NewDate(2024, 3, 15),
		Status:      core.StatusPaid,
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	svc := NewUpcomingService(repo, repo)
	today := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	got, err := svc.Upcoming(ctx, "u1", 3, today)
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}

	want := []string{"2024-02-15", "2024-04-15", "2024-05-15"}
	if len(got) != len(want) {
		t.Fatalf("got %d occurrences, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].NextDate.String() != w {
			t.Errorf("occurrence %d date = %s, want %s", i, got[i].NextDate, w)
		}
	}
	if got[0].DaysUntilDue != -15 || got[0].Status != core.StatusOverdue {
		t.Errorf("first occurrence = %d days / %s, want -15 / vencido", got[0].DaysUntilDue, got[0].Status)
	}
}

func TestUpcomingNoTemplates(t *testing.T) {
	repo := storage.NewMemoryRepository()
	svc := NewUpcomingService(repo, repo)

	got, err := svc.Upcoming(context.Background(), "u1", 3, time.Now())
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil for a user with no templates", got)
	}
}

type failingTemplateSource struct{ err error }

func (f failingTemplateSource) ListRecurringTemplates(context.Context, string) ([]core.RecurringTemplate, error) {
	return nil, f.err
}

func TestUpcomingStorageError(t *testing.T) {
	wantErr := errors.New("db down")
	svc := NewUpcomingService(failingTemplateSource{err: wantErr}, storage.NewMemoryRepository())

	_, err := svc.Upcoming(context.Background(), "u1", 3, time.Now())
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped %v", err, wantErr)
	}
}
