package storage

import (
	"context"
	"errors"
	"testing"

	"gastos/internal/core"
)

func TestMemoryRepositoryExpensesSplitByRecurring(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.CreateExpense(ctx, core.Expense{
		UserID:      "u1",
		Amount:      core.Money{Cents: 50000},
		Description: "Renta",
		Date:        core.NewDate(2024, 1, 15),
		Recurring:   true,
		Frequency:   core.Monthly,
	})
	if err != nil {
		t.Fatalf("create recurring expense: %v", err)
	}
	_, err = repo.CreateExpense(ctx, core.Expense{
		UserID:      "u1",
		Amount:      core.Money{Cents: 50000},
		Description: "Renta (2024-02-15)",
		Date:        core.NewDate(2024, 2, 14),
	})
	if err != nil {
		t.Fatalf("create realized expense: %v", err)
	}

	templates, err := repo.ListRecurringTemplates(ctx, "u1")
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(templates) != 1 || templates[0].Frequency != core.Monthly {
		t.Fatalf("templates = %+v", templates)
	}

	realized, err := repo.ListRealizedOccurrences(ctx, "u1")
	if err != nil {
		t.Fatalf("list realized: %v", err)
	}
	if len(realized) != 1 || realized[0].Description != "Renta (2024-02-15)" {
		t.Fatalf("realized = %+v", realized)
	}

	// Other users see nothing.
	other, _ := repo.ListRecurringTemplates(ctx, "u2")
	if len(other) != 0 {
		t.Fatalf("u2 templates = %+v", other)
	}
}

func TestMemoryRepositoryTemplateCRUD(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	id, err := repo.CreateTemplate(ctx, core.RecurringTemplate{
		UserID:      "u1",
		Amount:      core.Money{Cents: 999},
		Description: "Internet",
		AnchorDate:  core.NewDate(2024, 2, 1),
		Frequency:   core.Monthly,
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	err = repo.UpdateTemplate(ctx, "u1", id, core.RecurringTemplate{
		UserID:      "u1",
		Amount:      core.Money{Cents: 1099},
		Description: "Internet fibra",
		AnchorDate:  core.NewDate(2024, 2, 5),
		Frequency:   core.Monthly,
	})
	if err != nil {
		t.Fatalf("update template: %v", err)
	}

	templates, _ := repo.ListRecurringTemplates(ctx, "u1")
	if len(templates) != 1 || templates[0].Amount.Cents != 1099 {
		t.Fatalf("templates after update = %+v", templates)
	}

	if err := repo.DeleteTemplate(ctx, "u1", id); err != nil {
		t.Fatalf("delete template: %v", err)
	}
	if err := repo.DeleteTemplate(ctx, "u1", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestMemoryRepositoryOverdueExpenses(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	today := core.NewDate(2024, 3, 1)

	mk := func(date core.Date, status core.PaymentStatus, desc string) {
		t.Helper()
		_, err := repo.CreateExpense(ctx, core.Expense{
			UserID:      "u1",
			Amount:      core.Money{Cents: 100},
			Description: desc,
			Date:        date,
			Status:      status,
		})
		if err != nil {
			t.Fatalf("create %s: %v", desc, err)
		}
	}

	mk(core.NewDate(2024, 2, 10), core.StatusPending, "luz")
	mk(core.NewDate(2024, 2, 20), core.StatusPaid, "agua")
	mk(core.NewDate(2024, 3, 10), core.StatusPending, "gas")

	overdue, err := repo.ListOverdueExpenses(ctx, "u1", today)
	if err != nil {
		t.Fatalf("list overdue: %v", err)
	}
	if len(overdue) != 1 || overdue[0].Description != "luz" {
		t.Fatalf("overdue = %+v", overdue)
	}
}

func TestMemoryRepositoryListUserIDs(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, u := range []string{"beto", "ana", "beto"} {
		_, err := repo.CreateExpense(ctx, core.Expense{
			UserID:      u,
			Amount:      core.Money{Cents: 100},
			Description: "x",
			Date:        core.NewDate(2024, 3, 1),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	ids, err := repo.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("list user ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "ana" || ids[1] != "beto" {
		t.Fatalf("ids = %v", ids)
	}
}

func TestMemoryRepositoryMarkExpensePaidAndDelete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	id, err := repo.CreateExpense(ctx, core.Expense{
		UserID:      "ana",
		Amount:      core.Money{Cents: 4200},
		Description: "internet",
		Date:        core.NewDate(2024, 3, 1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.MarkExpensePaid(ctx, "ana", id); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	expenses, err := repo.ListExpenses(ctx, "ana", 2024, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(expenses) != 1 || expenses[0].Status != core.StatusPaid {
		t.Fatalf("expected paid expense, got %+v", expenses)
	}

	if err := repo.DeleteExpense(ctx, "ana", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteExpense(ctx, "ana", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
	if err := repo.MarkExpensePaid(ctx, "ana", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("mark paid after delete err = %v, want ErrNotFound", err)
	}
}

func TestMemoryRepositoryExpenseMutationsIgnoreTemplates(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	id, err := repo.CreateTemplate(ctx, core.RecurringTemplate{
		UserID:      "ana",
		Amount:      core.Money{Cents: 50000},
		Description: "renta",
		AnchorDate:  core.NewDate(2024, 1, 1),
		Frequency:   core.Monthly,
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	if err := repo.DeleteExpense(ctx, "ana", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleting a template through DeleteExpense err = %v, want ErrNotFound", err)
	}
	if err := repo.MarkExpensePaid(ctx, "ana", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("paying a template err = %v, want ErrNotFound", err)
	}
}

func TestMemoryRepositoryTemplateDescriptionOptional(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	tmpl := core.RecurringTemplate{
		UserID:     "u1",
		Amount:     core.Money{Cents: 999},
		AnchorDate: core.NewDate(2024, 2, 1),
		Frequency:  core.Monthly,
	}
	if err := tmpl.Validate(); err != nil {
		t.Fatalf("template validate: %v", err)
	}

	id, err := repo.CreateTemplate(ctx, tmpl)
	if err != nil {
		t.Fatalf("create template without description: %v", err)
	}

	templates, err := repo.ListRecurringTemplates(ctx, "u1")
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(templates) != 1 || templates[0].ID != id || templates[0].Description != "" {
		t.Fatalf("templates = %+v", templates)
	}
}

func TestMemoryRepositoryMutationsScopedToUser(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	expID, err := repo.CreateExpense(ctx, core.Expense{
		UserID:      "ana",
		Amount:      core.Money{Cents: 4200},
		Description: "internet",
		Date:        core.NewDate(2024, 3, 1),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	tmplID, err := repo.CreateTemplate(ctx, core.RecurringTemplate{
		UserID:     "ana",
		Amount:     core.Money{Cents: 50000},
		AnchorDate: core.NewDate(2024, 1, 1),
		Frequency:  core.Monthly,
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	if err := repo.MarkExpensePaid(ctx, "beto", expID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("paying another user's expense err = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteExpense(ctx, "beto", expID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleting another user's expense err = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTemplate(ctx, "beto", tmplID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleting another user's template err = %v, want ErrNotFound", err)
	}

	// The owner still can.
	if err := repo.MarkExpensePaid(ctx, "ana", expID); err != nil {
		t.Fatalf("owner mark paid: %v", err)
	}
	if err := repo.DeleteTemplate(ctx, "ana", tmplID); err != nil {
		t.Fatalf("owner delete template: %v", err)
	}
}

func TestMemoryRepositoryCategoryCRUD(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	id, err := repo.CreateCategory(ctx, core.Category{UserID: "u1", Name: "Vivienda"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	cats, err := repo.ListCategories(ctx, "u1")
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Vivienda" || cats[0].Color != core.DefaultCategoryColor {
		t.Fatalf("categories = %+v", cats)
	}

	err = repo.UpdateCategory(ctx, "u1", id, core.Category{Name: "Hogar", Color: "#EF4444", Icon: "🏠"})
	if err != nil {
		t.Fatalf("update category: %v", err)
	}
	cats, _ = repo.ListCategories(ctx, "u1")
	if len(cats) != 1 || cats[0].Name != "Hogar" || cats[0].Color != "#EF4444" {
		t.Fatalf("categories after update = %+v", cats)
	}

	if err := repo.UpdateCategory(ctx, "u2", id, core.Category{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("updating another user's category err = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteCategory(ctx, "u2", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleting another user's category err = %v, want ErrNotFound", err)
	}

	if err := repo.DeleteCategory(ctx, "u1", id); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if err := repo.DeleteCategory(ctx, "u1", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}

	if _, err := repo.CreateCategory(ctx, core.Category{UserID: "u1"}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("nameless category err = %v, want ErrEmptyName", err)
	}
}
