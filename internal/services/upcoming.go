// Package services wires storage reads into the domain computations the
// handlers and workers expose.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gastos/internal/core"
	"gastos/internal/projection"
	"gastos/internal/storage"
)

// UpcomingService produces the upcoming virtual occurrences for a user by
// feeding stored templates and realized rows through the projection
// engine. It holds no state of its own; realized-vs-pending lives
// entirely in storage.
type UpcomingService struct {
	templates storage.TemplateSource
	realized  storage.RealizedSource
}

func NewUpcomingService(templates storage.TemplateSource, realized storage.RealizedSource) *UpcomingService {
	return &UpcomingService{templates: templates, realized: realized}
}

// Upcoming returns the user's projected occurrences within horizonMonths
// of today, most overdue first.
func (s *UpcomingService) Upcoming(ctx context.Context, userID string, horizonMonths int, today time.Time) ([]core.VirtualOccurrence, error) {
	templates, err := s.templates.ListRecurringTemplates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring templates: %w", err)
	}
	if len(templates) == 0 {
		return nil, nil
	}

	realized, err := s.realized.ListRealizedOccurrences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list realized occurrences: %w", err)
	}

	occs := projection.Project(templates, realized, horizonMonths, today)

	slog.DebugContext(ctx, "Projected upcoming occurrences",
		"user_id", userID,
		"templates", len(templates),
		"realized", len(realized),
		"horizon_months", horizonMonths,
		"occurrences", len(occs))

	return occs, nil
}
