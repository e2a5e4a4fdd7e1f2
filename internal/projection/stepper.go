// Package projection computes upcoming virtual occurrences from recurring
// expense templates.
//
// This file implements the Strategy Pattern for due-date stepping. Each
// frequency has its own stepper that encapsulates the calendar arithmetic
// for advancing from one occurrence to the next.
package projection

import (
	"fmt"

	"gastos/internal/core"
)

// Stepper is the strategy interface for advancing an occurrence date by
// one recurrence period.
type Stepper interface {
	// Next returns the occurrence date immediately after d.
	Next(d core.Date) core.Date
}

// WeeklyStepper advances seven days at a time.
type WeeklyStepper struct{}

func (WeeklyStepper) Next(d core.Date) core.Date { return d.AddDays(7) }

// MonthlyStepper advances one calendar month, keeping the day of month.
// When the target month is shorter the date normalizes forward
// (Jan 31 -> Mar 2/3), never clamps.
type MonthlyStepper struct{}

func (MonthlyStepper) Next(d core.Date) core.Date { return d.AddMonths(1) }

// YearlyStepper advances one calendar year, keeping month and day, with
// the same normalization rule as MonthlyStepper (Feb 29 -> Mar 1).
type YearlyStepper struct{}

func (YearlyStepper) Next(d core.Date) core.Date { return d.AddYears(1) }

// steppers maps frequencies to their corresponding strategies.
var steppers = map[core.Frequency]Stepper{
	core.Weekly:  WeeklyStepper{},
	core.Monthly: MonthlyStepper{},
	core.Yearly:  YearlyStepper{},
}

// StepperFor returns the stepper for a frequency, or an error when the
// frequency is not one of the supported cadences.
func StepperFor(f core.Frequency) (Stepper, error) {
	s, ok := steppers[f]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %q", f)
	}
	return s, nil
}
