package http

import (
	"log/slog"
	"net/http"

	"gastos/internal/core"
)

type createIncomeRequest struct {
	Source      string `json:"source"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	var req createIncomeRequest
	if err := decodeBody(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "invalid date")
		return
	}

	income := core.Income{
		UserID:      uid,
		Source:      sanitizeInput(req.Source),
		Amount:      amount,
		Date:        date,
		Description: sanitizeInput(req.Description),
	}
	if err := income.Validate(); err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.repo.CreateIncome(r.Context(), income)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create income", "error", err, "user_id", uid)
		errorJSON(w, http.StatusInternalServerError, "failed to create income")
		return
	}
	income.ID = id

	s.invalidateUser(uid)
	respondJSON(w, http.StatusCreated, income)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
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

	incomes, err := s.repo.ListIncomes(r.Context(), uid, year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list incomes", "error", err, "user_id", uid)
		errorJSON(w, http.StatusInternalServerError, "failed to load incomes")
		return
	}
	if incomes == nil {
		incomes = []core.Income{}
	}
	respondJSON(w, http.StatusOK, incomes)
}
