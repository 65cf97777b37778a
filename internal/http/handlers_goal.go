package http

import (
	"net/http"

	"saldo/internal/core"
)

type goalRequest struct {
	Name        string  `json:"name"`
	TargetValue string  `json:"targetValue"`
	Duration    float64 `json:"duration"`
	Unit        string  `json:"unit"`
}

type contributeRequest struct {
	Value string `json:"value"`
}

type contributeResponse struct {
	Goal    core.Goal `json:"goal"`
	Reached bool      `json:"reached"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.State().GoalList)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	target, err := parseAmount(req.TargetValue)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	goal, err := s.store.AddGoal(r.Context(), req.Name, target, req.Duration, core.DurationUnit(req.Unit))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleContributeGoal(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	value, err := parseAmount(req.Value)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	goal, reached, err := s.store.ContributeToGoal(r.Context(), r.PathValue("id"), value)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contributeResponse{Goal: goal, Reached: reached})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
