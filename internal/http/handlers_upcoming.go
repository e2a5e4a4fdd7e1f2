package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gastos/internal/core"
)

// handleUpcoming returns the user's projected occurrences, most overdue
// first. The horizon query parameter overrides the configured default.
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	horizon := parseIntQuery(r, "horizon", s.horizonMonths)
	if horizon < 0 {
		errorJSON(w, http.StatusBadRequest, "horizon must not be negative")
		return
	}

	today := time.Now()
	cacheKey := fmt.Sprintf("%s:upcoming:%d:%s", uid, horizon, today.Format("2006-01-02"))
	if occs, ok := s.upcomingCache.Get(cacheKey); ok {
		respondJSON(w, http.StatusOK, occs)
		return
	}

	occs, err := s.upcoming.Upcoming(r.Context(), uid, horizon, today)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to project upcoming occurrences", "error", err, "user_id", uid)
		errorJSON(w, http.StatusInternalServerError, "failed to load upcoming expenses")
		return
	}
	if occs == nil {
		// Keep the response shape stable for empty projections.
		occs = []core.VirtualOccurrence{}
	}

	s.upcomingCache.Set(cacheKey, occs)
	respondJSON(w, http.StatusOK, occs)
}

type realizeRequest struct {
	TemplateID int64  `json:"templateId"`
	Date       string `json:"date"`
}

// handleRealizeOccurrence converts one projected occurrence into a paid
// expense row. The created description carries the occurrence date as a
// trailing " (YYYY-MM-DD)" suffix, which is what suppresses the same
// occurrence on the next projection.
func (s *Server) handleRealizeOccurrence(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	var req realizeRequest
	if err := decodeBody(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "invalid date")
		return
	}

	templates, err := s.repo.ListRecurringTemplates(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list templates for realize", "error", err, "user_id", uid)
		errorJSON(w, http.StatusInternalServerError, "failed to realize occurrence")
		return
	}
	var tmpl *core.RecurringTemplate
	for i := range templates {
		if templates[i].ID == req.TemplateID {
			tmpl = &templates[i]
			break
		}
	}
	if tmpl == nil {
		errorJSON(w, http.StatusNotFound, "recurring expense not found")
		return
	}

	expense := core.Expense{
		UserID:      uid,
		CategoryID:  tmpl.CategoryID,
		Amount:      tmpl.Amount,
		Description: fmt.Sprintf("%s (%s)", tmpl.Description, date),
		Date:        date,
		Status:      core.StatusPaid,
	}
	id, err := s.repo.CreateExpense(r.Context(), expense)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to realize occurrence", "error", err, "user_id", uid, "template_id", req.TemplateID)
		errorJSON(w, http.StatusInternalServerError, "failed to realize occurrence")
		return
	}
	expense.ID = id

	s.invalidateUser(uid)
	respondJSON(w, http.StatusCreated, expense)
}
