package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"gastos/internal/services"
)

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	year, month := parseYearMonth(r)
	if month < 1 || month > 12 {
		errorJSON(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	cacheKey := fmt.Sprintf("%s:summary:%d-%d", uid, year, month)
	if summary, ok := s.summaryCache.Get(cacheKey); ok {
		respondJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := s.summaries.MonthlySummary(r.Context(), uid, year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute monthly summary", "error", err, "user_id", uid)
		errorJSON(w, http.StatusInternalServerError, "failed to load summary")
		return
	}

	s.summaryCache.Set(cacheKey, summary)
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTopCategories(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	year, month := parseYearMonth(r)
	if month < 1 || month > 12 {
		errorJSON(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}
	limit := parseIntQuery(r, "limit", 5)

	categories, err := s.summaries.TopCategories(r.Context(), uid, year, month, limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute top categories", "error", err, "user_id", uid)
		errorJSON(w, http.StatusInternalServerError, "failed to load categories")
		return
	}
	if categories == nil {
		categories = []services.CategorySummary{}
	}
	respondJSON(w, http.StatusOK, categories)
}

func (s *Server) handleNextMonthProjection(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	projection, err := s.summaries.NextMonthProjection(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute next month projection", "error", err, "user_id", uid)
		errorJSON(w, http.StatusInternalServerError, "failed to load projection")
		return
	}
	respondJSON(w, http.StatusOK, projection)
}
