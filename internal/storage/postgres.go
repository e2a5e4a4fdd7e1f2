package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"gastos/internal/core"
)

// PostgresRepository talks to the hosted Postgres database the production
// deployment runs against. The schema there is managed by the hosting
// platform, so this backend runs no migrations of its own.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) ListRecurringTemplates(ctx context.Context, userID string) ([]core.RecurringTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, COALESCE(category_id, 0), amount_cents, COALESCE(description, ''),
		        to_char(date, 'YYYY-MM-DD'), COALESCE(recurrence_frequency, ''), COALESCE(payment_status, '')
		 FROM expenses
		 WHERE user_id = $1 AND is_recurring = 1`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring templates: %w", err)
	}
	defer rows.Close()

	var templates []core.RecurringTemplate
	for rows.Next() {
		var (
			t         core.RecurringTemplate
			dateStr   string
			frequency string
			status    string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Amount.Cents, &t.Description, &dateStr, &frequency, &status); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t.Frequency = core.Frequency(frequency)
		t.Status = core.PaymentStatus(status)
		anchor, err := core.ParseDate(dateStr)
		if err != nil {
			slog.WarnContext(ctx, "Template has unparseable anchor date",
				"id", t.ID, "date", dateStr)
		}
		t.AnchorDate = anchor
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *PostgresRepository) ListRealizedOccurrences(ctx context.Context, userID string) ([]core.RealizedOccurrence, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT to_char(date, 'YYYY-MM-DD'), COALESCE(description, '')
		 FROM expenses WHERE user_id = $1 AND is_recurring = 0`,
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

func (r *PostgresRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT user_id FROM expenses ORDER BY user_id`)
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

func (r *PostgresRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	status := e.Status
	if status == "" {
		status = core.StatusPending
	}
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO expenses (user_id, category_id, amount_cents, description, date, payment_status, is_recurring, recurrence_frequency)
		 VALUES ($1, NULLIF($2, 0), $3, $4, $5::date, $6, $7, NULLIF($8, ''))
		 RETURNING id`,
		e.UserID, e.CategoryID, e.Amount.Cents, e.Description, e.Date.String(),
		string(status), boolToInt(e.Recurring), string(e.Frequency),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"user_id", e.UserID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"recurring", e.Recurring)

	return id, nil
}

func (r *PostgresRepository) ListExpenses(ctx context.Context, userID string, year, month int) ([]core.Expense, error) {
	first, last := monthBounds(year, month)
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, COALESCE(category_id, 0), amount_cents, COALESCE(description, ''),
		        to_char(date, 'YYYY-MM-DD'), COALESCE(payment_status, ''), is_recurring, COALESCE(recurrence_frequency, '')
		 FROM expenses
		 WHERE user_id = $1 AND date >= $2::date AND date <= $3::date
		 ORDER BY date DESC, id DESC`,
		userID, first.String(), last.String())
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	return r.scanExpenses(rows)
}

func (r *PostgresRepository) ListOverdueExpenses(ctx context.Context, userID string, today core.Date) ([]core.Expense, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, COALESCE(category_id, 0), amount_cents, COALESCE(description, ''),
		        to_char(date, 'YYYY-MM-DD'), COALESCE(payment_status, ''), is_recurring, COALESCE(recurrence_frequency, '')
		 FROM expenses
		 WHERE user_id = $1 AND is_recurring = 0 AND date < $2::date AND payment_status != 'pagado'
		 ORDER BY date ASC`,
		userID, today.String())
	if err != nil {
		return nil, fmt.Errorf("list overdue expenses: %w", err)
	}
	defer rows.Close()
	return r.scanExpenses(rows)
}

func (r *PostgresRepository) MarkExpensePaid(ctx context.Context, userID string, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE expenses SET payment_status = $1 WHERE id = $2 AND user_id = $3 AND is_recurring = 0`,
		string(core.StatusPaid), id, userID)
	if err != nil {
		return fmt.Errorf("mark expense paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteExpense(ctx context.Context, userID string, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM expenses WHERE id = $1 AND user_id = $2 AND is_recurring = 0`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateIncome(ctx context.Context, in core.Income) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO incomes (user_id, source, amount_cents, description, date)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5::date) RETURNING id`,
		in.UserID, in.Source, in.Amount.Cents, in.Description, in.Date.String(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create income: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) ListIncomes(ctx context.Context, userID string, year, month int) ([]core.Income, error) {
	first, last := monthBounds(year, month)
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, source, amount_cents, COALESCE(description, ''), to_char(date, 'YYYY-MM-DD')
		 FROM incomes
		 WHERE user_id = $1 AND date >= $2::date AND date <= $3::date
		 ORDER BY date DESC, id DESC`,
		userID, first.String(), last.String())
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		var (
			in      core.Income
			dateStr string
		)
		if err := rows.Scan(&in.ID, &in.UserID, &in.Source, &in.Amount.Cents, &in.Description, &dateStr); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		if d, err := core.ParseDate(dateStr); err == nil {
			in.Date = d
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

func (r *PostgresRepository) CreateTemplate(ctx context.Context, t core.RecurringTemplate) (int64, error) {
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

func (r *PostgresRepository) UpdateTemplate(ctx context.Context, userID string, id int64, t core.RecurringTemplate) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE expenses
		 SET category_id = NULLIF($1, 0), amount_cents = $2, description = $3, date = $4::date, recurrence_frequency = $5
		 WHERE id = $6 AND user_id = $7 AND is_recurring = 1`,
		t.CategoryID, t.Amount.Cents, t.Description, t.AnchorDate.String(), string(t.Frequency), id, userID)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteTemplate(ctx context.Context, userID string, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM expenses WHERE id = $1 AND user_id = $2 AND is_recurring = 1`, id, userID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, COALESCE(color, ''), COALESCE(icon, '')
		 FROM categories WHERE user_id = $1 ORDER BY created_at ASC`,
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

func (r *PostgresRepository) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (user_id, name, color, icon) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.UserID, c.Name, c.Color, c.Icon).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, userID string, id int64, c core.Category) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $1, color = $2, icon = $3 WHERE id = $4 AND user_id = $5`,
		c.Name, c.Color, c.Icon, id, userID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, userID string, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanExpenses(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]core.Expense, error) {
	var expenses []core.Expense
	for rows.Next() {
		var (
			e         core.Expense
			dateStr   string
			status    string
			recurring int
			frequency string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Amount.Cents, &e.Description, &dateStr, &status, &recurring, &frequency); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Status = core.PaymentStatus(status)
		e.Recurring = recurring != 0
		e.Frequency = core.Frequency(frequency)
		if d, err := core.ParseDate(dateStr); err == nil {
			e.Date = d
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
