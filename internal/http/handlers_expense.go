package http

import (
	"net/http"

	"saldo/internal/core"
)

// expenseRequest is the submitted form of an expense. Recurrence defaults
// to "once"; "monthly" expands into a year of independent instances.
type expenseRequest struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Amount       string `json:"amount"`
	DueDate      string `json:"dueDate"`
	Paid         bool   `json:"paid"`
	Recurrence   string `json:"recurrence"`
	AlarmOffsets []int  `json:"alarmOffsets"`
}

func (req expenseRequest) toExpense() (core.Expense, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	due, err := core.ParseDate(req.DueDate)
	if err != nil {
		return core.Expense{}, err
	}
	recurrence := core.Recurrence(req.Recurrence)
	if req.Recurrence == "" {
		recurrence = core.Once
	}
	return core.Expense{
		Transaction: core.Transaction{
			Name:     req.Name,
			Category: req.Category,
			Amount:   amount,
		},
		DueDate:      due,
		Paid:         req.Paid,
		Recurrence:   recurrence,
		AlarmOffsets: req.AlarmOffsets,
	}, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	snap := s.store.State()
	if r.URL.Query().Get("year") != "" || r.URL.Query().Get("month") != "" {
		y, m := parseYearMonth(r)
		writeJSON(w, http.StatusOK, core.ExpensesForMonth(snap.ExpenseList, y, m))
		return
	}
	writeJSON(w, http.StatusOK, snap.ExpenseList)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := req.toExpense()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := s.store.AddExpense(r.Context(), expense)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := req.toExpense()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	expense.ID = r.PathValue("id")

	if err := s.store.EditExpense(r.Context(), expense); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTogglePaid(w http.ResponseWriter, r *http.Request) {
	paid, err := s.store.TogglePaid(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paid": paid})
}
