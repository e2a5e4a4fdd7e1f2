package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gastos/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the default local backend.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) ListRecurringTemplates(ctx context.Context, userID string) ([]core.RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, description, date, recurrence_frequency, payment_status
		 FROM expenses
		 WHERE user_id = ? AND is_recurring = 1`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring templates: %w", err)
	}
	defer rows.Close()

	var templates []core.RecurringTemplate
	for rows.Next() {
		var (
			t          core.RecurringTemplate
			categoryID sql.NullInt64
			dateStr    string
			frequency  sql.NullString
			status     sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.UserID, &categoryID, &t.Amount.Cents, &t.Description, &dateStr, &frequency, &status); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t.CategoryID = categoryID.Int64
		t.Frequency = core.Frequency(frequency.String)
		t.Status = core.PaymentStatus(status.String)
		anchor, err := core.ParseDate(dateStr)
		if err != nil {
			// Leave the anchor zero; the projection engine skips it.
			slog.WarnContext(ctx, "Template has unparseable anchor date",
				"id", t.ID, "date", dateStr)
		}
		t.AnchorDate = anchor
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *SQLiteRepository) ListRealizedOccurrences(ctx context.Context, userID string) ([]core.RealizedOccurrence, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, description FROM expenses WHERE user_id = ? AND is_recurring = 0`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list realized occurrences: %w", err)
	}
	defer rows.Close()

	var realized []core.RealizedOccurrence
	for rows.Next() {
		var (
			o       core.RealizedOccurrence
			dateStr string
		)
		if err := rows.Scan(&dateStr, &o.Description); err != nil {
			return nil, fmt.Errorf("scan realized occurrence: %w", err)
		}
		if d, err := core.ParseDate(dateStr); err == nil {
			o.Date = d
		}
		realized = append(realized, o)
	}
	return realized, rows.Err()
}

func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM expenses ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	status := e.Status
	if status == "" {
		status = core.StatusPending
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, category_id, amount_cents, description, date, payment_status, is_recurring, recurrence_frequency)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, nullableID(e.CategoryID), e.Amount.Cents, e.Description, e.Date.String(),
		string(status), boolToInt(e.Recurring), nullableString(string(e.Frequency)))
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"user_id", e.UserID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"recurring", e.Recurring)

	return id, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string, year, month int) ([]core.Expense, error) {
	first, last := monthBounds(year, month)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, description, date, payment_status, is_recurring, recurrence_frequency
		 FROM expenses
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date DESC, id DESC`,
		userID, first.String(), last.String())
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	return scanExpenses(rows)
}

func (r *SQLiteRepository) ListOverdueExpenses(ctx context.Context, userID string, today core.Date) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, description, date, payment_status, is_recurring, recurrence_frequency
		 FROM expenses
		 WHERE user_id = ? AND is_recurring = 0 AND date < ? AND payment_status != 'pagado'
		 ORDER BY date ASC`,
		userID, today.String())
	if err != nil {
		return nil, fmt.Errorf("list overdue expenses: %w", err)
	}
	defer rows.Close()
	return scanExpenses(rows)
}

func (r *SQLiteRepository) MarkExpensePaid(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET payment_status = ? WHERE id = ? AND user_id = ? AND is_recurring = 0`,
		string(core.StatusPaid), id, userID)
	if err != nil {
		return fmt.Errorf("mark expense paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark expense paid result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ? AND is_recurring = 0`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateIncome(ctx context.Context, in core.Income) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (user_id, source, amount_cents, description, date) VALUES (?, ?, ?, ?, ?)`,
		in.UserID, in.Source, in.Amount.Cents, in.Description, in.Date.String())
	if err != nil {
		return 0, fmt.Errorf("create income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("income id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, userID string, year, month int) ([]core.Income, error) {
	first, last := monthBounds(year, month)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, source, amount_cents, description, date
		 FROM incomes
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date DESC, id DESC`,
		userID, first.String(), last.String())
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		var (
			in          core.Income
			description sql.NullString
			dateStr     string
		)
		if err := rows.Scan(&in.ID, &in.UserID, &in.Source, &in.Amount.Cents, &description, &dateStr); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		in.Description = description.String
		if d, err := core.ParseDate(dateStr); err == nil {
			in.Date = d
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

func (r *SQLiteRepository) CreateTemplate(ctx context.Context, t core.RecurringTemplate) (int64, error) {
	return r.CreateExpense(ctx, core.Expense{
		UserID:      t.UserID,
		CategoryID:  t.CategoryID,
		Amount:      t.Amount,
		Description: t.Description,
		Date:        t.AnchorDate,
		Status:      t.Status,
		Recurring:   true,
		Frequency:   t.Frequency,
	})
}

func (r *SQLiteRepository) UpdateTemplate(ctx context.Context, userID string, id int64, t core.RecurringTemplate) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET category_id = ?, amount_cents = ?, description = ?, date = ?, recurrence_frequency = ?
		 WHERE id = ? AND user_id = ? AND is_recurring = 1`,
		nullableID(t.CategoryID), t.Amount.Cents, t.Description, t.AnchorDate.String(), string(t.Frequency), id, userID)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update template result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTemplate(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ? AND is_recurring = 1`, id, userID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, color, COALESCE(icon, '') FROM categories WHERE user_id = ? ORDER BY created_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, color, icon) VALUES (?, ?, ?, ?)`,
		c.UserID, c.Name, c.Color, c.Icon)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, userID string, id int64, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, color = ?, icon = ? WHERE id = ? AND user_id = ?`,
		c.Name, c.Color, c.Icon, id, userID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var expenses []core.Expense
	for rows.Next() {
		var (
			e          core.Expense
			categoryID sql.NullInt64
			dateStr    string
			status     sql.NullString
			recurring  int
			frequency  sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &categoryID, &e.Amount.Cents, &e.Description, &dateStr, &status, &recurring, &frequency); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.CategoryID = categoryID.Int64
		e.Status = core.PaymentStatus(status.String)
		e.Recurring = recurring != 0
		e.Frequency = core.Frequency(frequency.String)
		if d, err := core.ParseDate(dateStr); err == nil {
			e.Date = d
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// monthBounds returns the first and last calendar day of a month.
func monthBounds(year, month int) (core.Date, core.Date) {
	first := core.NewDate(year, month, 1)
	last := first.AddMonths(1).AddDays(-1)
	return first, last
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
