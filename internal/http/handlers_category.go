package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"gastos/internal/core"
	"gastos/internal/storage"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func categoryFromRequest(r *http.Request, uid string) (core.Category, string) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		return core.Category{}, "invalid request body"
	}

	c := core.Category{
		UserID: uid,
		Name:   sanitizeInput(req.Name),
		Color:  sanitizeInput(req.Color),
		Icon:   sanitizeInput(req.Icon),
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err.Error()
	}
	return c, ""
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	cats, err := s.repo.ListCategories(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list categories", "error", err, "user_id", uid)
		errorJSON(w, http.StatusInternalServerError, "failed to load categories")
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	respondJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	c, problem := categoryFromRequest(r, uid)
	if problem != "" {
		errorJSON(w, http.StatusUnprocessableEntity, problem)
		return
	}
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}

	id, err := s.repo.CreateCategory(r.Context(), c)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create category", "error", err, "user_id", uid)
		errorJSON(w, http.StatusInternalServerError, "failed to create category")
		return
	}
	c.ID = id

	s.invalidateUser(uid)
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		errorJSON(w, http.StatusBadRequest, "invalid category id")
		return
	}

	c, problem := categoryFromRequest(r, uid)
	if problem != "" {
		errorJSON(w, http.StatusUnprocessableEntity, problem)
		return
	}

	if err := s.repo.UpdateCategory(r.Context(), uid, id, c); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "category not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update category", "error", err, "user_id", uid, "category_id", id)
		errorJSON(w, http.StatusInternalServerError, "failed to update category")
		return
	}
	c.ID = id

	s.invalidateUser(uid)
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		errorJSON(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := s.repo.DeleteCategory(r.Context(), uid, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "category not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete category", "error", err, "user_id", uid, "category_id", id)
		errorJSON(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	s.invalidateUser(uid)
	w.WriteHeader(http.StatusNoContent)
}
