package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"gastos/internal/core"
	"gastos/internal/storage"
)

type templateRequest struct {
	CategoryID  int64  `json:"categoryId"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	AnchorDate  string `json:"anchorDate"`
	Frequency   string `json:"frequency"`
}

func (s *Server) templateFromRequest(r *http.Request, uid string) (core.RecurringTemplate, string) {
	var req templateRequest
	if err := decodeBody(r, &req); err != nil {
		return core.RecurringTemplate{}, "invalid request body"
	}

	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		return core.RecurringTemplate{}, "invalid amount"
	}
	anchor, err := core.ParseDate(req.AnchorDate)
	if err != nil {
		return core.RecurringTemplate{}, "invalid anchor date"
	}

	t := core.RecurringTemplate{
		UserID:      uid,
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Description: sanitizeInput(req.Description),
		AnchorDate:  anchor,
		Frequency:   core.Frequency(req.Frequency),
	}
	if err := t.Validate(); err != nil {
		return core.RecurringTemplate{}, err.Error()
	}
	return t, ""
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	t, problem := s.templateFromRequest(r, uid)
	if problem != "" {
		errorJSON(w, http.StatusUnprocessableEntity, problem)
		return
	}

	id, err := s.repo.CreateTemplate(r.Context(), t)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create recurring template", "error", err, "user_id", uid)
		errorJSON(w, http.StatusInternalServerError, "failed to create recurring expense")
		return
	}
	t.ID = id

	s.invalidateUser(uid)
	respondJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		errorJSON(w, http.StatusBadRequest, "invalid template id")
		return
	}

	t, problem := s.templateFromRequest(r, uid)
	if problem != "" {
		errorJSON(w, http.StatusUnprocessableEntity, problem)
		return
	}

	if err := s.repo.UpdateTemplate(r.Context(), uid, id, t); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "recurring expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update recurring template", "error", err, "user_id", uid, "template_id", id)
		errorJSON(w, http.StatusInternalServerError, "failed to update recurring expense")
		return
	}
	t.ID = id

	s.invalidateUser(uid)
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		errorJSON(w, http.StatusBadRequest, "invalid template id")
		return
	}

	if err := s.repo.DeleteTemplate(r.Context(), uid, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "recurring expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete recurring template", "error", err, "user_id", uid, "template_id", id)
		errorJSON(w, http.StatusInternalServerError, "failed to delete recurring expense")
		return
	}

	s.invalidateUser(uid)
	w.WriteHeader(http.StatusNoContent)
}
