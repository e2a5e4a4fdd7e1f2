package projection

import (
	"reflect"
	"testing"
	"time"

	"gastos/internal/core"
)

func monthlyTemplate(id int64, anchor string) core.RecurringTemplate {
	return template(id, anchor, core.Monthly)
}

func template(id int64, anchor string, freq core.Frequency) core.RecurringTemplate {
	d, _ := core.ParseDate(anchor)
	return core.RecurringTemplate{
		ID:          id,
		UserID:      "u1",
		CategoryID:  1,
		Amount:      core.Money{Cents: 50000},
		Description: "Renta",
		AnchorDate:  d,
		Frequency:   freq,
	}
}

func day(s string) time.Time {
	d, _ := core.ParseDate(s)
	return d.Time
}

func nextDates(occs []core.VirtualOccurrence) []string {
	out := make([]string, len(occs))
	for i, o := range occs {
		out[i] = o.NextDate.String()
	}
	return out
}

func TestProjectMonthlyWithinHorizon(t *testing.T) {
	occs := Project(
		[]core.RecurringTemplate{monthlyTemplate(1, "2024-01-15")},
		nil, 3, day("2024-03-01"),
	)

	want := []string{"2024-02-15", "2024-03-15", "2024-04-15", "2024-05-15"}
	if got := nextDates(occs); !reflect.DeepEqual(got, want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}

	// 2024-02-15 is 15 days overdue: within retention, marked vencido.
	first := occs[0]
	if first.DaysUntilDue != -15 || first.Status != core.StatusOverdue || first.DueMessage != "Vencido" {
		t.Errorf("overdue occurrence = %+v", first)
	}

	second := occs[1]
	if second.DaysUntilDue != 14 || second.DueMessage != "Vence en 2 semanas" || second.Status != core.StatusPending {
		t.Errorf("upcoming occurrence = %+v", second)
	}

	for _, o := range occs {
		if !o.IsVirtual {
			t.Errorf("occurrence %s not tagged virtual", o.NextDate)
		}
		if o.TemplateID != 1 {
			t.Errorf("occurrence %s templateId = %d", o.NextDate, o.TemplateID)
		}
	}
}

func TestProjectSuppressesRealizedOccurrence(t *testing.T) {
	realized := []core.RealizedOccurrence{
		{Date: core.NewDate(2024, 3, 14), Description: "Renta (2024-03-15)"},
	}
	occs := Project(
		[]core.RecurringTemplate{monthlyTemplate(1, "2024-01-15")},
		realized, 3, day("2024-03-01"),
	)

	for _, o := range occs {
		if o.NextDate.String() == "2024-03-15" {
			t.Fatal("paid occurrence 2024-03-15 should be suppressed")
		}
	}
	if got := nextDates(occs); !reflect.DeepEqual(got, []string{"2024-02-15", "2024-04-15", "2024-05-15"}) {
		t.Fatalf("dates = %v", got)
	}
}

func TestProjectRealizedSuffixMustMatchExactly(t *testing.T) {
	// A suffix that is not the exact trailing " (YYYY-MM-DD)" form is
	// treated as no match: better a duplicate than a hidden due date.
	realized := []core.RealizedOccurrence{
		{Date: core.NewDate(2024, 3, 15), Description: "Renta 2024-03-15"},
		{Date: core.NewDate(2024, 3, 15), Description: "Renta (2024-03-15) pagada"},
	}
	occs := Project(
		[]core.RecurringTemplate{monthlyTemplate(1, "2024-01-15")},
		realized, 1, day("2024-03-01"),
	)
	found := false
	for _, o := range occs {
		if o.NextDate.String() == "2024-03-15" {
			found = true
		}
	}
	if !found {
		t.Fatal("occurrence suppressed by a non-matching description")
	}
}

func TestProjectInvalidFrequencyFailsSoft(t *testing.T) {
	templates := []core.RecurringTemplate{
		template(1, "2024-02-20", "biweekly"),
		monthlyTemplate(2, "2024-02-10"),
	}
	occs := Project(templates, nil, 1, day("2024-03-01"))

	if len(occs) == 0 {
		t.Fatal("valid template should still project")
	}
	for _, o := range occs {
		if o.TemplateID == 1 {
			t.Fatal("invalid-frequency template produced an occurrence")
		}
	}
}

func TestProjectEmptyAndMalformedInputs(t *testing.T) {
	if got := Project(nil, nil, 3, day("2024-03-01")); len(got) != 0 {
		t.Errorf("nil templates = %v", got)
	}
	if got := Project([]core.RecurringTemplate{}, nil, 3, day("2024-03-01")); len(got) != 0 {
		t.Errorf("empty templates = %v", got)
	}
	if got := Project([]core.RecurringTemplate{monthlyTemplate(1, "2024-01-15")}, nil, 3, time.Time{}); got != nil {
		t.Errorf("zero today = %v", got)
	}

	// Zero anchor date fails closed without touching other templates.
	broken := core.RecurringTemplate{ID: 9, UserID: "u1", Frequency: core.Monthly}
	occs := Project([]core.RecurringTemplate{broken, monthlyTemplate(2, "2024-02-10")}, nil, 1, day("2024-03-01"))
	for _, o := range occs {
		if o.TemplateID == 9 {
			t.Fatal("zero-anchor template produced an occurrence")
		}
	}
	if len(occs) == 0 {
		t.Fatal("valid template suppressed by broken sibling")
	}
}

func TestProjectZeroHorizonKeepsRetentionWindow(t *testing.T) {
	// Weekly template anchored 40 days back: candidates at -33, -26,
	// -19, -12, -5 days. Only those within the 30-day retention window
	// survive, and nothing lands after today.
	occs := Project(
		[]core.RecurringTemplate{template(1, "2024-01-21", core.Weekly)},
		nil, 0, day("2024-03-01"),
	)

	want := []string{"2024-02-04", "2024-02-11", "2024-02-18", "2024-02-25"}
	if got := nextDates(occs); !reflect.DeepEqual(got, want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}
	for _, o := range occs {
		if o.DaysUntilDue < -30 || o.DaysUntilDue > 0 {
			t.Errorf("%s outside [-30, 0]: %d", o.NextDate, o.DaysUntilDue)
		}
	}

	// Negative horizon behaves like zero.
	neg := Project([]core.RecurringTemplate{template(1, "2024-01-21", core.Weekly)}, nil, -5, day("2024-03-01"))
	if !reflect.DeepEqual(nextDates(neg), want) {
		t.Fatalf("negative horizon dates = %v", nextDates(neg))
	}
}

func TestProjectMergesAndOrdersAcrossTemplates(t *testing.T) {
	templates := []core.RecurringTemplate{
		template(1, "2024-02-27", core.Weekly),  // next 2024-03-05: +4..
		template(2, "2024-01-28", core.Monthly), // 2024-02-28: -2, 2024-03-28: +27
	}
	occs := Project(templates, nil, 1, day("2024-03-01"))

	if len(occs) < 2 {
		t.Fatalf("expected occurrences from both templates, got %d", len(occs))
	}
	for i := 1; i < len(occs); i++ {
		if occs[i].DaysUntilDue < occs[i-1].DaysUntilDue {
			t.Fatalf("not sorted at %d: %v", i, occs)
		}
	}
	if occs[0].TemplateID != 2 || occs[0].DaysUntilDue != -2 {
		t.Fatalf("most overdue first, got %+v", occs[0])
	}
}

func TestProjectHorizonBound(t *testing.T) {
	today := day("2024-03-01")
	horizon := 3
	end := core.Truncate(today).AddMonths(horizon)

	occs := Project(
		[]core.RecurringTemplate{template(1, "2023-01-01", core.Weekly)},
		nil, horizon, today,
	)
	for _, o := range occs {
		if o.NextDate.After(end.Time) {
			t.Errorf("%s beyond horizon %s", o.NextDate, end)
		}
		if o.DaysUntilDue < -30 {
			t.Errorf("%s beyond retention: %d", o.NextDate, o.DaysUntilDue)
		}
	}
}

func TestProjectDeterministic(t *testing.T) {
	templates := []core.RecurringTemplate{
		template(1, "2024-01-15", core.Monthly),
		template(2, "2024-02-01", core.Weekly),
		template(3, "2023-06-10", core.Yearly),
	}
	realized := []core.RealizedOccurrence{
		{Date: core.NewDate(2024, 2, 15), Description: "Renta (2024-02-15)"},
	}
	first := Project(templates, realized, 4, day("2024-03-01"))
	for i := 0; i < 5; i++ {
		again := Project(templates, realized, 4, day("2024-03-01"))
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first", i)
		}
	}
}

func TestProjectClampsExcessiveHorizon(t *testing.T) {
	today := day("2024-03-01")
	occs := Project(
		[]core.RecurringTemplate{template(1, "2024-02-01", core.Monthly)},
		nil, 1000000, today,
	)
	limit := core.Truncate(today).AddMonths(36)
	if len(occs) == 0 {
		t.Fatal("expected occurrences")
	}
	for _, o := range occs {
		if o.NextDate.After(limit.Time) {
			t.Fatalf("%s past the 36-month clamp", o.NextDate)
		}
	}
}

func TestProjectTodayTimeOfDayIgnored(t *testing.T) {
	noon := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
	midnight := day("2024-03-01")

	a := Project([]core.RecurringTemplate{monthlyTemplate(1, "2024-01-15")}, nil, 3, noon)
	b := Project([]core.RecurringTemplate{monthlyTemplate(1, "2024-01-15")}, nil, 3, midnight)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("time of day leaked into projection")
	}
}

func TestDueMessageBuckets(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{-10, "Vencido"},
		{-1, "Vencido"},
		{0, "Vence hoy"},
		{1, "Vence mañana"},
		{2, "Vence en 2 días"},
		{7, "Vence en 7 días"},
		{8, "Vence en 2 semanas"},
		{14, "Vence en 2 semanas"},
		{15, "Vence en 3 semanas"},
		{30, "Vence en 5 semanas"},
		{31, "Vence en 2 meses"},
		{60, "Vence en 2 meses"},
		{61, "Vence en 3 meses"},
	}
	for _, tc := range cases {
		if got := DueMessage(tc.days); got != tc.want {
			t.Errorf("DueMessage(%d) = %q, want %q", tc.days, got, tc.want)
		}
	}
}
