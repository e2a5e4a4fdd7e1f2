package storage

import (
	"context"
	"sort"
	"sync"

	"gastos/internal/core"
)

// MemoryRepository is an in-process backend for tests and demos.
type MemoryRepository struct {
	mu         sync.Mutex
	nextID     int64
	expenses   []core.Expense
	incomes    []core.Income
	categories []core.Category
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

func (r *MemoryRepository) Close() error { return nil }

func (r *MemoryRepository) ListRecurringTemplates(_ context.Context, userID string) ([]core.RecurringTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var templates []core.RecurringTemplate
	for _, e := range r.expenses {
		if e.UserID == userID && e.Recurring {
			templates = append(templates, e.Template())
		}
	}
	return templates, nil
}

func (r *MemoryRepository) ListRealizedOccurrences(_ context.Context, userID string) ([]core.RealizedOccurrence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var realized []core.RealizedOccurrence
	for _, e := range r.expenses {
		if e.UserID == userID && !e.Recurring {
			realized = append(realized, core.RealizedOccurrence{Date: e.Date, Description: e.Description})
		}
	}
	return realized, nil
}

func (r *MemoryRepository) ListUserIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]struct{}{}
	var ids []string
	for _, e := range r.expenses {
		if _, ok := seen[e.UserID]; !ok {
			seen[e.UserID] = struct{}{}
			ids = append(ids, e.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *MemoryRepository) CreateExpense(_ context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = r.nextID
	r.nextID++
	if e.Status == "" {
		e.Status = core.StatusPending
	}
	r.expenses = append(r.expenses, e)
	return e.ID, nil
}

func (r *MemoryRepository) ListExpenses(_ context.Context, userID string, year, month int) ([]core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []core.Expense
	for _, e := range r.expenses {
		if e.UserID == userID && e.Date.Year() == year && int(e.Date.Month()) == month {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out, nil
}

func (r *MemoryRepository) ListOverdueExpenses(_ context.Context, userID string, today core.Date) ([]core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []core.Expense
	for _, e := range r.expenses {
		if e.UserID == userID && !e.Recurring && e.Date.Before(today.Time) && e.Status != core.StatusPaid {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (r *MemoryRepository) MarkExpensePaid(_ context.Context, userID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.expenses {
		if r.expenses[i].ID == id && r.expenses[i].UserID == userID && !r.expenses[i].Recurring {
			r.expenses[i].Status = core.StatusPaid
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) DeleteExpense(_ context.Context, userID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.expenses {
		if r.expenses[i].ID == id && r.expenses[i].UserID == userID && !r.expenses[i].Recurring {
			r.expenses = append(r.expenses[:i], r.expenses[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) CreateIncome(_ context.Context, in core.Income) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	in.ID = r.nextID
	r.nextID++
	r.incomes = append(r.incomes, in)
	return in.ID, nil
}

func (r *MemoryRepository) ListIncomes(_ context.Context, userID string, year, month int) ([]core.Income, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []core.Income
	for _, in := range r.incomes {
		if in.UserID == userID && in.Date.Year() == year && int(in.Date.Month()) == month {
			out = append(out, in)
		}
	}
	return out, nil
}

func (r *MemoryRepository) CreateTemplate(_ context.Context, t core.RecurringTemplate) (int64, error) {
	// Template descriptions are optional, so the stored row skips the
	// one-off expense validation.
	if err := t.Validate(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e := core.Expense{
		ID:          r.nextID,
		UserID:      t.UserID,
		CategoryID:  t.CategoryID,
		Amount:      t.Amount,
		Description: t.Description,
		Date:        t.AnchorDate,
		Status:      t.Status,
		Recurring:   true,
		Frequency:   t.Frequency,
	}
	if e.Status == "" {
		e.Status = core.StatusPending
	}
	r.nextID++
	r.expenses = append(r.expenses, e)
	return e.ID, nil
}

func (r *MemoryRepository) UpdateTemplate(_ context.Context, userID string, id int64, t core.RecurringTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.expenses {
		if r.expenses[i].ID == id && r.expenses[i].UserID == userID && r.expenses[i].Recurring {
			e := &r.expenses[i]
			e.CategoryID = t.CategoryID
			e.Amount = t.Amount
			e.Description = t.Description
			e.Date = t.AnchorDate
			e.Frequency = t.Frequency
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) DeleteTemplate(_ context.Context, userID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.expenses {
		if r.expenses[i].ID == id && r.expenses[i].UserID == userID && r.expenses[i].Recurring {
			r.expenses = append(r.expenses[:i], r.expenses[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) ListCategories(_ context.Context, userID string) ([]core.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []core.Category
	for _, c := range r.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepository) CreateCategory(_ context.Context, c core.Category) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = r.nextID
	r.nextID++
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	r.categories = append(r.categories, c)
	return c.ID, nil
}

func (r *MemoryRepository) UpdateCategory(_ context.Context, userID string, id int64, c core.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.categories {
		if r.categories[i].ID == id && r.categories[i].UserID == userID {
			r.categories[i].Name = c.Name
			r.categories[i].Color = c.Color
			r.categories[i].Icon = c.Icon
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) DeleteCategory(_ context.Context, userID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.categories {
		if r.categories[i].ID == id && r.categories[i].UserID == userID {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
