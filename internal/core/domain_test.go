package core

import (
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2024-03-15" {
		t.Fatalf("String() = %q", d.String())
	}

	for _, bad := range []string{"", "15/03/2024", "2024-13-01", "not-a-date"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) err = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestDateDaysSince(t *testing.T) {
	today := NewDate(2024, 3, 1)
	cases := []struct {
		other Date
		want  int
	}{
		{NewDate(2024, 3, 15), 14},
		{NewDate(2024, 3, 1), 0},
		{NewDate(2024, 2, 15), -15},
	}
	for _, tc := range cases {
		if got := tc.other.DaysSince(today); got != tc.want {
			t.Errorf("%s.DaysSince(%s) = %d, want %d", tc.other, today, got, tc.want)
		}
	}
}

func TestDateAddMonthsOverflow(t *testing.T) {
	// End-of-month anchors normalize forward rather than clamping,
	// the same behavior as the reference stepping.
	cases := []struct {
		start string
		want  string
	}{
		{"2024-01-31", "2024-03-02"}, // leap year
		{"2023-01-31", "2023-03-03"},
		{"2024-01-15", "2024-02-15"},
		{"2024-08-31", "2024-10-01"},
	}
	for _, tc := range cases {
		start, _ := ParseDate(tc.start)
		if got := start.AddMonths(1).String(); got != tc.want {
			t.Errorf("%s + 1 month = %s, want %s", tc.start, got, tc.want)
		}
	}
}

func TestFrequencyIsValid(t *testing.T) {
	for _, f := range []Frequency{Weekly, Monthly, Yearly} {
		if !f.IsValid() {
			t.Errorf("%q should be valid", f)
		}
	}
	for _, f := range []Frequency{"", "daily", "biweekly", "Monthly"} {
		if f.IsValid() {
			t.Errorf("%q should be invalid", f)
		}
	}
}

func TestRecurringTemplateValidate(t *testing.T) {
	valid := RecurringTemplate{
		UserID:      "u1",
		CategoryID:  1,
		Amount:      Money{Cents: 1500},
		Description: "Renta",
		AnchorDate:  NewDate(2024, 1, 15),
		Frequency:   Monthly,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid template rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*RecurringTemplate)
	}{
		{"missing user", func(tt *RecurringTemplate) { tt.UserID = "" }},
		{"zero anchor", func(tt *RecurringTemplate) { tt.AnchorDate = Date{} }},
		{"bad frequency", func(tt *RecurringTemplate) { tt.Frequency = "biweekly" }},
		{"zero amount", func(tt *RecurringTemplate) { tt.Amount = Money{} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tmpl := valid
			tc.mutate(&tmpl)
			if err := tmpl.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestExpenseTemplate(t *testing.T) {
	e := Expense{
		ID:          7,
		UserID:      "u1",
		CategoryID:  3,
		Amount:      Money{Cents: 999},
		Description: "Internet",
		Date:        NewDate(2024, 2, 1),
		Recurring:   true,
		Frequency:   Monthly,
	}
	tmpl := e.Template()
	if tmpl.ID != e.ID || tmpl.AnchorDate != e.Date || tmpl.Frequency != Monthly {
		t.Fatalf("Template() = %+v", tmpl)
	}
}
