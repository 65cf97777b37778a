package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"saldo/internal/core"
	"saldo/internal/insights"
	"saldo/internal/state"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"uptime":  time.Since(s.started).String(),
		"pending": s.scheduler.Pending(),
	}
	if warning := s.store.LoadWarning(); warning != "" {
		resp["loadWarning"] = warning
	}
	if err := s.persister.LastError(); err != nil {
		resp["status"] = "degraded"
		resp["persistError"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.State().User)
}

func (s *Server) handleSetUser(w http.ResponseWriter, r *http.Request) {
	var req core.User
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.store.SetUsername(r.Context(), req.Username); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.State().User)
}

func (s *Server) handleCategoryColor(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}
	isRevenue := r.URL.Query().Get("revenue") == "true"

	color := s.store.CategoryColor(r.Context(), category, isRevenue)
	writeJSON(w, http.StatusOK, map[string]string{"category": category, "color": color})
}

func (s *Server) handleSetColors(w http.ResponseWriter, r *http.Request) {
	var picks []state.CustomColor
	if !decodeJSON(w, r, &picks) {
		return
	}
	if err := s.store.SetCustomColors(r.Context(), picks); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.State().Colors)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	key := fmt.Sprintf("%04d-%02d", year, month)

	if overview, ok := s.overviewCache.Get(key); ok {
		writeJSON(w, http.StatusOK, overview)
		return
	}

	snap := s.store.State()
	overview := core.Overview(snap.IncomeList, snap.ExpenseList, year, month)
	s.overviewCache.Set(key, overview)
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleAlarms(w http.ResponseWriter, r *http.Request) {
	snap := s.store.State()
	writeJSON(w, http.StatusOK, core.UpcomingAlarms(snap.ExpenseList, time.Now()))
}

type spendingLimitsResponse struct {
	insights.SpendingAnalysis
	AdviceLines []string `json:"adviceLines"`
}

func (s *Server) handleSpendingLimits(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.insights.AnalyzeSpending(r.Context(), s.store.State())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spendingLimitsResponse{
		SpendingAnalysis: analysis,
		AdviceLines:      insights.SplitAdvice(analysis.Advice),
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	lines, err := s.insights.GenerateInsights(r.Context(), s.store.State())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"insights": lines})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.Export(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	filename := fmt.Sprintf("saldo-backup-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("Failed to write export", "error", err)
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reset(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
