package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	StatusPaid    PaymentStatus = "pagado"
	StatusPending PaymentStatus = "pendiente"
	StatusOverdue PaymentStatus = "vencido"
)

// DefaultCategoryColor is assigned when a category is created without
// an explicit color, and shown for uncategorized spending.
const DefaultCategoryColor = "#6B7280"

type (
	// Frequency is the recurrence cadence of a template.
	Frequency string

	// PaymentStatus mirrors the states the tracker exposes to users.
	PaymentStatus string

	// Date is a calendar date with no time-of-day component.
	// The embedded time.Time is always midnight UTC.
	Date struct {
		time.Time
	}

	// RecurringTemplate is a user-defined recurring expense rule. Virtual
	// occurrences are projected from it; the template itself is the only
	// valid mutation target.
	RecurringTemplate struct {
		ID          int64         `json:"id"`
		UserID      string        `json:"userId"`
		CategoryID  int64         `json:"categoryId"`
		Amount      Money         `json:"amount"`
		Description string        `json:"description,omitempty"`
		AnchorDate  Date          `json:"anchorDate"`
		Frequency   Frequency     `json:"frequency"`
		Status      PaymentStatus `json:"paymentStatus,omitempty"`
	}

	// RealizedOccurrence is an already-recorded expense row that may
	// correspond to a past virtual occurrence. The description may carry
	// the occurrence date as a trailing " (YYYY-MM-DD)" suffix.
	RealizedOccurrence struct {
		Date        Date   `json:"date"`
		Description string `json:"description"`
	}

	// VirtualOccurrence is a projected, never-persisted instance of a
	// template. Downstream code must not update or delete it as if it
	// were a database row.
	VirtualOccurrence struct {
		TemplateID   int64         `json:"templateId"`
		UserID       string        `json:"userId"`
		CategoryID   int64         `json:"categoryId"`
		Amount       Money         `json:"amount"`
		Description  string        `json:"description,omitempty"`
		IsVirtual    bool          `json:"isVirtual"`
		NextDate     Date          `json:"nextDate"`
		DaysUntilDue int           `json:"daysUntilDue"`
		DueMessage   string        `json:"dueMessage"`
		Status       PaymentStatus `json:"paymentStatus"`
	}

	// Expense is a concrete expense row. Rows with Recurring set act as
	// recurring templates; the rest are one-off (realized) records.
	Expense struct {
		ID          int64         `json:"id"`
		UserID      string        `json:"userId"`
		CategoryID  int64         `json:"categoryId"`
		Amount      Money         `json:"amount"`
		Description string        `json:"description,omitempty"`
		Date        Date          `json:"date"`
		Status      PaymentStatus `json:"paymentStatus,omitempty"`
		Recurring   bool          `json:"isRecurring"`
		Frequency   Frequency     `json:"recurrenceFrequency,omitempty"`
	}

	// Income is a concrete income row.
	Income struct {
		ID          int64  `json:"id"`
		UserID      string `json:"userId"`
		Source      string `json:"source"`
		Amount      Money  `json:"amount"`
		Date        Date   `json:"date"`
		Description string `json:"description,omitempty"`
	}

	// Category is a user-defined expense category.
	Category struct {
		ID     int64  `json:"id"`
		UserID string `json:"userId"`
		Name   string `json:"name"`
		Color  string `json:"color,omitempty"`
		Icon   string `json:"icon,omitempty"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyUserID      = errors.New("empty user id")
	ErrEmptySource      = errors.New("empty source")
	ErrEmptyName        = errors.New("empty name")
)

// IsValid reports whether f is one of the supported cadences.
func (f Frequency) IsValid() bool {
	switch f {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

const dateLayout = "2006-01-02"

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// Truncate drops the time-of-day from t, keeping the calendar date in UTC.
func Truncate(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// DaysSince returns the signed whole-day distance from other to d.
func (d Date) DaysSince(other Date) int {
	return int(d.Time.Sub(other.Time) / (24 * time.Hour))
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AddMonths returns the date n calendar months after d. Overflow past the
// end of the target month normalizes forward (Jan 31 + 1 month = Mar 2/3),
// matching time.AddDate.
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.Time.AddDate(0, n, 0)}
}

// AddYears returns the date n calendar years after d, with the same
// normalization rule as AddMonths.
func (d Date) AddYears(n int) Date {
	return Date{Time: d.Time.AddDate(n, 0, 0)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t RecurringTemplate) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUserID
	}
	if err := t.AnchorDate.Validate(); err != nil {
		return fmt.Errorf("anchor date: %w", err)
	}
	if !t.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, t.Frequency)
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return t.Amount.Validate()
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyUserID
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Recurring && !e.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, e.Frequency)
	}
	return nil
}

func (in Income) Validate() error {
	if strings.TrimSpace(in.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(in.Source) == "" {
		return ErrEmptySource
	}
	if err := in.Date.Validate(); err != nil {
		return err
	}
	return in.Amount.Validate()
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}

// Template converts a recurring expense row into the template the
// projection engine consumes.
func (e Expense) Template() RecurringTemplate {
	return RecurringTemplate{
		ID:          e.ID,
		UserID:      e.UserID,
		CategoryID:  e.CategoryID,
		Amount:      e.Amount,
		Description: e.Description,
		AnchorDate:  e.Date,
		Frequency:   e.Frequency,
		Status:      e.Status,
	}
}
