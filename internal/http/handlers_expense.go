package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"gastos/internal/core"
	"gastos/internal/storage"
)

type createExpenseRequest struct {
	CategoryID  int64  `json:"categoryId"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Status      string `json:"paymentStatus"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
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

	expense := core.Expense{
		UserID:      uid,
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Description: sanitizeInput(req.Description),
		Date:        date,
		Status:      core.PaymentStatus(req.Status),
	}
	if err := expense.Validate(); err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.repo.CreateExpense(r.Context(), expense)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create expense", "error", err, "user_id", uid)
		errorJSON(w, http.StatusInternalServerError, "failed to create expense")
		return
	}
	expense.ID = id

	s.invalidateUser(uid)
	respondJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
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

	expenses, err := s.repo.ListExpenses(r.Context(), uid, year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses", "error", err, "user_id", uid)
		errorJSON(w, http.StatusInternalServerError, "failed to load expenses")
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	respondJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleOverdueExpenses(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	summary, err := s.summaries.Overdue(r.Context(), uid, core.Truncate(time.Now()))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load overdue expenses", "error", err, "user_id", uid)
		errorJSON(w, http.StatusInternalServerError, "failed to load overdue expenses")
		return
	}
	if summary.Expenses == nil {
		summary.Expenses = []core.Expense{}
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handlePayExpense(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		errorJSON(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	if err := s.repo.MarkExpensePaid(r.Context(), uid, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to mark expense paid", "error", err, "user_id", uid, "expense_id", id)
		errorJSON(w, http.StatusInternalServerError, "failed to update expense")
		return
	}

	s.invalidateUser(uid)
	respondJSON(w, http.StatusOK, map[string]string{"paymentStatus": string(core.StatusPaid)})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing user id")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		errorJSON(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	if err := s.repo.DeleteExpense(r.Context(), uid, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete expense", "error", err, "user_id", uid, "expense_id", id)
		errorJSON(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}

	s.invalidateUser(uid)
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody is shared by the income and template handlers; it rejects
// requests whose body is not a single JSON object.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON body")
	}
	return nil
}
