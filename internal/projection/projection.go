package projection

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"gastos/internal/core"
)

const (
	// retentionDays is how far back an unpaid occurrence keeps being
	// surfaced; anything older is assumed abandoned.
	retentionDays = 30

	// maxHorizonMonths caps the projection window.
	maxHorizonMonths = 36

	// maxStepsPerTemplate bounds the stepping loop so a template with a
	// pathological anchor date cannot spin forever.
	maxStepsPerTemplate = 5000
)

// realizedSuffix extracts the occurrence date a paid instance was logged
// for, from the trailing " (YYYY-MM-DD)" of its description.
var realizedSuffix = regexp.MustCompile(`\((\d{4}-\d{2}-\d{2})\)$`)

// Project expands recurring templates into the upcoming virtual
// occurrences within horizonMonths of today, merged across templates and
// sorted ascending by days until due (most overdue first).
//
// The function is pure: callers inject "today" and get deterministic
// output. A template with an unknown frequency or zero anchor date
// contributes nothing but never aborts the batch. Occurrences more than
// 30 days overdue are dropped, and occurrences the user already logged
// (matched via the realized-description date suffix) are suppressed.
func Project(templates []core.RecurringTemplate, realized []core.RealizedOccurrence, horizonMonths int, today time.Time) []core.VirtualOccurrence {
	if today.IsZero() {
		return nil
	}
	if horizonMonths < 0 {
		horizonMonths = 0
	}
	if horizonMonths > maxHorizonMonths {
		horizonMonths = maxHorizonMonths
	}

	day := core.Truncate(today)
	endDate := day.AddMonths(horizonMonths)
	paidDates := realizedDates(realized)

	var upcoming []core.VirtualOccurrence
	for _, tmpl := range templates {
		occs, err := projectTemplate(tmpl, paidDates, day, endDate)
		if err != nil {
			// Fail soft: one malformed template must not take
			// down the whole projection.
			continue
		}
		upcoming = append(upcoming, occs...)
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DaysUntilDue < upcoming[j].DaysUntilDue
	})
	return upcoming
}

func projectTemplate(tmpl core.RecurringTemplate, paidDates map[string]struct{}, today, endDate core.Date) ([]core.VirtualOccurrence, error) {
	if tmpl.AnchorDate.IsZero() {
		return nil, fmt.Errorf("template %d: zero anchor date", tmpl.ID)
	}
	step, err := StepperFor(tmpl.Frequency)
	if err != nil {
		return nil, fmt.Errorf("template %d: %w", tmpl.ID, err)
	}

	var occs []core.VirtualOccurrence
	next := step.Next(tmpl.AnchorDate)
	for i := 0; i < maxStepsPerTemplate && !next.After(endDate.Time); i++ {
		daysUntilDue := next.DaysSince(today)
		if daysUntilDue >= -retentionDays {
			if _, paid := paidDates[next.String()]; !paid {
				occs = append(occs, newOccurrence(tmpl, next, daysUntilDue))
			}
		}
		candidate := step.Next(next)
		if !candidate.After(next.Time) {
			return nil, fmt.Errorf("template %d: stepper did not advance past %s", tmpl.ID, next)
		}
		next = candidate
	}
	return occs, nil
}

func newOccurrence(tmpl core.RecurringTemplate, date core.Date, daysUntilDue int) core.VirtualOccurrence {
	status := core.StatusPending
	if daysUntilDue < 0 {
		status = core.StatusOverdue
	}
	return core.VirtualOccurrence{
		TemplateID:   tmpl.ID,
		UserID:       tmpl.UserID,
		CategoryID:   tmpl.CategoryID,
		Amount:       tmpl.Amount,
		Description:  tmpl.Description,
		IsVirtual:    true,
		NextDate:     date,
		DaysUntilDue: daysUntilDue,
		DueMessage:   DueMessage(daysUntilDue),
		Status:       status,
	}
}

// realizedDates collects the occurrence dates already logged by the user.
// Descriptions without the exact suffix format contribute nothing, which
// errs toward showing a duplicate rather than hiding a real due date.
func realizedDates(realized []core.RealizedOccurrence) map[string]struct{} {
	dates := make(map[string]struct{}, len(realized))
	for _, r := range realized {
		if m := realizedSuffix.FindStringSubmatch(r.Description); m != nil {
			dates[m[1]] = struct{}{}
		}
	}
	return dates
}

// DueMessage renders the user-facing due text for a signed day distance.
// The bucket boundaries and ceil rounding are load-bearing: downstream
// consumers localize the words but key off the same thresholds.
func DueMessage(daysUntilDue int) string {
	switch {
	case daysUntilDue < 0:
		return "Vencido"
	case daysUntilDue == 0:
		return "Vence hoy"
	case daysUntilDue == 1:
		return "Vence mañana"
	case daysUntilDue <= 7:
		return fmt.Sprintf("Vence en %d días", daysUntilDue)
	case daysUntilDue <= 30:
		return fmt.Sprintf("Vence en %d semanas", ceilDiv(daysUntilDue, 7))
	default:
		return fmt.Sprintf("Vence en %d meses", ceilDiv(daysUntilDue, 30))
	}
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
