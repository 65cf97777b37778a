// Package http exposes the application over a JSON API consumed by the
// presentation layer.
package http

import (
	"net/http"
	"time"

	"saldo/internal/cache"
	"saldo/internal/core"
	"saldo/internal/insights"
	"saldo/internal/notify"
	"saldo/internal/state"
)

type Server struct {
	http.Server

	store     *state.Store
	persister *state.Persister
	insights  *insights.Service
	scheduler *notify.Scheduler

	// LRU cache for month overviews, purged on every mutation.
	overviewCache *cache.LRUCache[core.MonthOverview]

	started time.Time
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, store *state.Store, persister *state.Persister, insightSvc *insights.Service, scheduler *notify.Scheduler) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:         store,
		persister:     persister,
		insights:      insightSvc,
		scheduler:     scheduler,
		overviewCache: cache.NewLRUCache[core.MonthOverview](24, 5*time.Minute),
		started:       time.Now(),
	}

	// Any mutation invalidates every memoized overview.
	store.Subscribe(func(ev state.Event, _ state.Snapshot) {
		if ev.Op != state.OpLoad {
			s.overviewCache.Purge()
		}
	})

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/incomes", s.handleListIncomes)
	mux.HandleFunc("POST /api/incomes", s.handleCreateIncome)
	mux.HandleFunc("PUT /api/incomes/{id}", s.handleEditIncome)
	mux.HandleFunc("DELETE /api/incomes/{id}", s.handleDeleteIncome)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleEditExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("POST /api/expenses/{id}/toggle", s.handleTogglePaid)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("POST /api/goals/{id}/contribute", s.handleContributeGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)

	mux.HandleFunc("GET /api/user", s.handleGetUser)
	mux.HandleFunc("PUT /api/user", s.handleSetUser)

	mux.HandleFunc("GET /api/colors", s.handleCategoryColor)
	mux.HandleFunc("PUT /api/colors", s.handleSetColors)

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/alarms", s.handleAlarms)

	mux.HandleFunc("POST /api/insights/limits", s.handleSpendingLimits)
	mux.HandleFunc("POST /api/insights", s.handleInsights)

	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/reset", s.handleReset)

	s.Handler = withTrace(mux)
	return s
}
