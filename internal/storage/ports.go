// Package storage persists expenses, incomes, and recurring templates.
//
// Three backends implement the same ports: sqlite (default, embedded
// migrations), postgres (the hosted database the production deployment
// runs against), and memory (tests and demos).
package storage

import (
	"context"
	"errors"

	"gastos/internal/core"
)

// ErrNotFound is returned when a targeted row does not exist.
var ErrNotFound = errors.New("not found")

// Ports for the persistence collaborators. Consumers depend on the
// narrowest interface that serves them.
type (
	// TemplateSource returns every template flagged as recurring,
	// regardless of horizon; the projection engine does the filtering.
	TemplateSource interface {
		ListRecurringTemplates(ctx context.Context, userID string) ([]core.RecurringTemplate, error)
	}

	// RealizedSource returns the one-off (already-materialized) rows
	// whose descriptions may carry a projection dedup suffix.
	RealizedSource interface {
		ListRealizedOccurrences(ctx context.Context, userID string) ([]core.RealizedOccurrence, error)
	}

	// UserSource lists every user with at least one stored row.
	UserSource interface {
		ListUserIDs(ctx context.Context) ([]string, error)
	}

	// ExpenseStore mutations are scoped to the owning user; a row
	// that exists under another user reports ErrNotFound.
	ExpenseStore interface {
		CreateExpense(ctx context.Context, e core.Expense) (int64, error)
		ListExpenses(ctx context.Context, userID string, year, month int) ([]core.Expense, error)
		ListOverdueExpenses(ctx context.Context, userID string, today core.Date) ([]core.Expense, error)
		MarkExpensePaid(ctx context.Context, userID string, id int64) error
		DeleteExpense(ctx context.Context, userID string, id int64) error
	}

	IncomeStore interface {
		CreateIncome(ctx context.Context, in core.Income) (int64, error)
		ListIncomes(ctx context.Context, userID string, year, month int) ([]core.Income, error)
	}

	TemplateStore interface {
		CreateTemplate(ctx context.Context, t core.RecurringTemplate) (int64, error)
		UpdateTemplate(ctx context.Context, userID string, id int64, t core.RecurringTemplate) error
		DeleteTemplate(ctx context.Context, userID string, id int64) error
	}

	CategorySource interface {
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
	}

	CategoryStore interface {
		CategorySource
		CreateCategory(ctx context.Context, c core.Category) (int64, error)
		UpdateCategory(ctx context.Context, userID string, id int64, c core.Category) error
		DeleteCategory(ctx context.Context, userID string, id int64) error
	}
)

// Repository is the full persistence surface a backend provides.
type Repository interface {
	TemplateSource
	RealizedSource
	UserSource
	ExpenseStore
	IncomeStore
	TemplateStore
	CategoryStore

	Close() error
}
