package http

import (
	"net/http"

	"saldo/internal/core"
)

// incomeRequest is the submitted form of an income entry. The amount is
// a decimal string, as typed by the user.
type incomeRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
}

func (req incomeRequest) toIncome() (core.Income, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Income{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Income{}, err
	}
	return core.Income{
		Transaction: core.Transaction{
			Name:     req.Name,
			Category: req.Category,
			Amount:   amount,
		},
		Date: date,
	}, nil
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	snap := s.store.State()
	if year := r.URL.Query().Get("year"); year != "" || r.URL.Query().Get("month") != "" {
		y, m := parseYearMonth(r)
		writeJSON(w, http.StatusOK, core.IncomeForMonth(snap.IncomeList, y, m))
		return
	}
	writeJSON(w, http.StatusOK, snap.IncomeList)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	income, err := req.toIncome()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := s.store.AddIncome(r.Context(), income)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleEditIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	income, err := req.toIncome()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	income.ID = r.PathValue("id")
	income.IsRevenue = true

	if err := s.store.EditIncome(r.Context(), income); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, income)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteIncome(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
