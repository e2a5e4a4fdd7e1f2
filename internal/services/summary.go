package services

import (
	"context"
	"fmt"
	"sort"

	"gastos/internal/core"
	"gastos/internal/storage"
)

// MonthlySummary aggregates a month of expenses and incomes.
type MonthlySummary struct {
	Year          int        `json:"year"`
	Month         int        `json:"month"`
	TotalExpenses core.Money `json:"totalExpenses"`
	TotalIncome   core.Money `json:"totalIncome"`
	Balance       core.Money `json:"balance"`
	ExpensesCount int        `json:"expensesCount"`
	IncomesCount  int        `json:"incomesCount"`
}

// OverdueSummary lists unpaid expenses whose date has passed.
type OverdueSummary struct {
	Count    int            `json:"count"`
	Total    core.Money     `json:"total"`
	Expenses []core.Expense `json:"expenses"`
}

// CategorySummary is a per-category slice of a month's spending.
type CategorySummary struct {
	CategoryID   int64      `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	Color        string     `json:"categoryColor,omitempty"`
	Icon         string     `json:"categoryIcon,omitempty"`
	Total        core.Money `json:"total"`
	Count        int        `json:"count"`
	Percentage   float64    `json:"percentage"`
}

// RecurringProjection is the naive next-month estimate: the sum of all
// recurring template amounts.
type RecurringProjection struct {
	Total core.Money `json:"total"`
	Count int        `json:"count"`
}

// SummaryService computes the dashboard aggregates.
type SummaryService struct {
	expenses   storage.ExpenseStore
	incomes    storage.IncomeStore
	categories storage.CategorySource
	templates  storage.TemplateSource
}

func NewSummaryService(expenses storage.ExpenseStore, incomes storage.IncomeStore, categories storage.CategorySource, templates storage.TemplateSource) *SummaryService {
	return &SummaryService{
		expenses:   expenses,
		incomes:    incomes,
		categories: categories,
		templates:  templates,
	}
}

// MonthlySummary returns totals, counts, and the balance for one month.
func (s *SummaryService) MonthlySummary(ctx context.Context, userID string, year, month int) (MonthlySummary, error) {
	summary := MonthlySummary{Year: year, Month: month}

	expenses, err := s.expenses.ListExpenses(ctx, userID, year, month)
	if err != nil {
		return summary, fmt.Errorf("list expenses: %w", err)
	}
	for _, e := range expenses {
		summary.TotalExpenses.Cents += e.Amount.Cents
	}
	summary.ExpensesCount = len(expenses)

	incomes, err := s.incomes.ListIncomes(ctx, userID, year, month)
	if err != nil {
		return summary, fmt.Errorf("list incomes: %w", err)
	}
	for _, in := range incomes {
		summary.TotalIncome.Cents += in.Amount.Cents
	}
	summary.IncomesCount = len(incomes)

	summary.Balance.Cents = summary.TotalIncome.Cents - summary.TotalExpenses.Cents
	return summary, nil
}

// Overdue returns the user's unpaid past-due expenses and their total.
func (s *SummaryService) Overdue(ctx context.Context, userID string, today core.Date) (OverdueSummary, error) {
	expenses, err := s.expenses.ListOverdueExpenses(ctx, userID, today)
	if err != nil {
		return OverdueSummary{}, fmt.Errorf("list overdue expenses: %w", err)
	}

	summary := OverdueSummary{Count: len(expenses), Expenses: expenses}
	for _, e := range expenses {
		summary.Total.Cents += e.Amount.Cents
	}
	return summary, nil
}

// TopCategories returns up to limit categories ordered by spend for the
// month, each with its share of the month's total.
func (s *SummaryService) TopCategories(ctx context.Context, userID string, year, month, limit int) ([]CategorySummary, error) {
	expenses, err := s.expenses.ListExpenses(ctx, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if len(expenses) == 0 {
		return nil, nil
	}

	type bucket struct {
		total int64
		count int
	}
	totals := make(map[int64]*bucket)
	var grandTotal int64
	for _, e := range expenses {
		b := totals[e.CategoryID]
		if b == nil {
			b = &bucket{}
			totals[e.CategoryID] = b
		}
		b.total += e.Amount.Cents
		b.count++
		grandTotal += e.Amount.Cents
	}

	categories, err := s.categories.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	byID := make(map[int64]core.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	summaries := make([]CategorySummary, 0, len(totals))
	for id, b := range totals {
		cs := CategorySummary{
			CategoryID:   id,
			CategoryName: "Sin categoría",
			Color:        core.DefaultCategoryColor,
			Total:        core.Money{Cents: b.total},
			Count:        b.count,
		}
		if c, ok := byID[id]; ok {
			cs.CategoryName = c.Name
			cs.Color = c.Color
			cs.Icon = c.Icon
		}
		if grandTotal > 0 {
			cs.Percentage = float64(b.total) / float64(grandTotal) * 100
		}
		summaries = append(summaries, cs)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Total.Cents > summaries[j].Total.Cents
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// NextMonthProjection sums the user's recurring template amounts.
func (s *SummaryService) NextMonthProjection(ctx context.Context, userID string) (RecurringProjection, error) {
	templates, err := s.templates.ListRecurringTemplates(ctx, userID)
	if err != nil {
		return RecurringProjection{}, fmt.Errorf("list recurring templates: %w", err)
	}

	proj := RecurringProjection{Count: len(templates)}
	for _, t := range templates {
		proj.Total.Cents += t.Amount.Cents
	}
	return proj, nil
}
