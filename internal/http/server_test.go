package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"saldo/internal/core"
	"saldo/internal/insights"
	"saldo/internal/notify"
	"saldo/internal/state"
	"saldo/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	docs := storage.NewMemoryStore()
	store := state.NewStore(docs, nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	persister := state.NewPersister(docs, nil)
	store.Subscribe(persister.Listener())
	scheduler := notify.NewScheduler(&notify.LogNotifier{}, nil, 8, 0, 0)
	store.Subscribe(scheduler.Listener())
	t.Cleanup(scheduler.CancelAll)
	return NewServer(":0", store, persister, insights.NewService(nil, nil), scheduler)
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp map[string]any
	decode(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("health = %v", resp)
	}
}

func TestIncomeCRUD(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/incomes",
		`{"name":"Salário","category":"salário","amount":"5000,00","date":"2025-03-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rr.Code, rr.Body.String())
	}
	var created core.Income
	decode(t, rr, &created)
	if created.ID == "" || !created.IsRevenue || created.Amount.Cents != 500000 {
		t.Fatalf("created = %+v", created)
	}

	rr = do(t, srv, http.MethodGet, "/api/incomes", "")
	var list []core.Income
	decode(t, rr, &list)
	if len(list) != 1 {
		t.Fatalf("list = %v", list)
	}

	// Month filter excludes other months.
	rr = do(t, srv, http.MethodGet, "/api/incomes?year=2025&month=4", "")
	decode(t, rr, &list)
	if len(list) != 0 {
		t.Fatalf("filtered list = %v", list)
	}

	rr = do(t, srv, http.MethodPut, "/api/incomes/"+created.ID,
		`{"name":"Salário","category":"salário","amount":"5500","date":"2025-03-01"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("edit status = %d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodDelete, "/api/incomes/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	rr = do(t, srv, http.MethodDelete, "/api/incomes/"+created.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("double delete status = %d", rr.Code)
	}
}

func TestCreateIncomeValidation(t *testing.T) {
	srv := newTestServer(t)
	cases := []struct {
		name string
		body string
	}{
		{"blank name", `{"name":"","category":"c","amount":"10","date":"2025-03-01"}`},
		{"bad amount", `{"name":"x","category":"c","amount":"abc","date":"2025-03-01"}`},
		{"zero amount", `{"name":"x","category":"c","amount":"0","date":"2025-03-01"}`},
		{"bad date", `{"name":"x","category":"c","amount":"10","date":"01/03/2025"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/incomes", tc.body)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
			}
		})
	}

	rr := do(t, srv, http.MethodPost, "/api/incomes", "{not json")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d", rr.Code)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/expenses",
		`{"name":"Aluguel","category":"moradia","amount":"1200","dueDate":"2025-01-31","recurrence":"monthly","alarmOffsets":[1,3]}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rr.Code, rr.Body.String())
	}
	var instances []core.Expense
	decode(t, rr, &instances)
	if len(instances) != core.MonthlySeriesLength {
		t.Fatalf("expanded to %d instances", len(instances))
	}

	// February instance day-clamps to the 28th.
	rr = do(t, srv, http.MethodGet, "/api/expenses?year=2025&month=2", "")
	var feb []core.Expense
	decode(t, rr, &feb)
	if len(feb) != 1 || feb[0].DueDate.String() != "2025-02-28" {
		t.Fatalf("february = %+v", feb)
	}

	id := instances[0].ID
	rr = do(t, srv, http.MethodPost, "/api/expenses/"+id+"/toggle", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rr.Code)
	}
	var toggled map[string]bool
	decode(t, rr, &toggled)
	if !toggled["paid"] {
		t.Fatalf("toggle = %v", toggled)
	}

	rr = do(t, srv, http.MethodDelete, "/api/expenses/"+id, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	rr = do(t, srv, http.MethodGet, "/api/expenses", "")
	var all []core.Expense
	decode(t, rr, &all)
	if len(all) != core.MonthlySeriesLength-1 {
		t.Fatalf("series not intact after single delete: %d", len(all))
	}
}

func TestEditExpenseDefaultsRecurrence(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodPost, "/api/expenses",
		`{"name":"Conta","category":"contas","amount":"100","dueDate":"2025-03-05"}`)
	var instances []core.Expense
	decode(t, rr, &instances)

	rr = do(t, srv, http.MethodPut, "/api/expenses/"+instances[0].ID,
		`{"name":"Conta de Luz","category":"contas","amount":"120","dueDate":"2025-03-06"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("edit status = %d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodPut, "/api/expenses/nope",
		`{"name":"x","category":"c","amount":"1","dueDate":"2025-03-06"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("edit missing status = %d", rr.Code)
	}
}

func TestGoalEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/goals",
		`{"name":"Viagem","targetValue":"500","duration":5,"unit":"months"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rr.Code, rr.Body.String())
	}
	var goal core.Goal
	decode(t, rr, &goal)
	if goal.MonthlyCommitment.Cents != 10000 {
		t.Fatalf("commitment = %d", goal.MonthlyCommitment.Cents)
	}

	rr = do(t, srv, http.MethodPost, "/api/goals/"+goal.ID+"/contribute", `{"value":"600"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("contribute status = %d body=%s", rr.Code, rr.Body.String())
	}
	var contrib contributeResponse
	decode(t, rr, &contrib)
	if !contrib.Reached {
		t.Fatal("crossing not reported")
	}
	if contrib.Goal.SavedAmount.Cents != 50000 {
		t.Fatalf("saved not clamped: %d", contrib.Goal.SavedAmount.Cents)
	}

	rr = do(t, srv, http.MethodPost, "/api/goals",
		`{"name":"Sem prazo","targetValue":"500","duration":0,"unit":"months"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid goal status = %d", rr.Code)
	}

	rr = do(t, srv, http.MethodDelete, "/api/goals/"+goal.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
}

func TestUserEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/user", "")
	var user core.User
	decode(t, rr, &user)
	if user.Username != core.DefaultUsername {
		t.Fatalf("default user = %+v", user)
	}

	rr = do(t, srv, http.MethodPut, "/api/user", `{"username":"Maria"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set status = %d", rr.Code)
	}
	decode(t, rr, &user)
	if user.Username != "Maria" {
		t.Fatalf("user = %+v", user)
	}

	rr = do(t, srv, http.MethodPut, "/api/user", `{"username":"  "}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank user status = %d", rr.Code)
	}
}

func TestColorEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/colors?category=Moradia", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp map[string]string
	decode(t, rr, &resp)
	first := resp["color"]
	if !strings.HasPrefix(first, "hsl(") {
		t.Fatalf("color = %q", first)
	}

	// Same category, different flag: cached color wins.
	rr = do(t, srv, http.MethodGet, "/api/colors?category=moradia&revenue=true", "")
	decode(t, rr, &resp)
	if resp["color"] != first {
		t.Fatalf("cached color changed: %q vs %q", resp["color"], first)
	}

	rr = do(t, srv, http.MethodGet, "/api/colors", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing category status = %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPut, "/api/colors", `[{"category":"Lazer","color":"#d92626"}]`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set colors status = %d", rr.Code)
	}
	var cache map[string]struct {
		Color  string `json:"color"`
		Custom bool   `json:"custom"`
	}
	decode(t, rr, &cache)
	if entry, ok := cache["lazer"]; !ok || !entry.Custom {
		t.Fatalf("cache = %v", cache)
	}
}

func TestSummary(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/api/incomes",
		`{"name":"Salário","category":"salário","amount":"100","date":"2025-03-01"}`)
	do(t, srv, http.MethodPost, "/api/incomes",
		`{"name":"Extra","category":"extra","amount":"50","date":"2025-03-10"}`)
	do(t, srv, http.MethodPost, "/api/expenses",
		`{"name":"Conta","category":"contas","amount":"30","dueDate":"2025-03-05","paid":true}`)
	do(t, srv, http.MethodPost, "/api/expenses",
		`{"name":"Outra","category":"contas","amount":"20","dueDate":"2025-03-20"}`)

	rr := do(t, srv, http.MethodGet, "/api/summary?year=2025&month=3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var overview core.MonthOverview
	decode(t, rr, &overview)
	if overview.Totals.Income.Cents != 15000 {
		t.Fatalf("income = %d", overview.Totals.Income.Cents)
	}
	if overview.Totals.Expenses.Cents != 5000 {
		t.Fatalf("expenses = %d", overview.Totals.Expenses.Cents)
	}
	if overview.Totals.Paid.Cents != 3000 {
		t.Fatalf("paid = %d", overview.Totals.Paid.Cents)
	}
	if overview.Totals.Balance.Cents != 12000 {
		t.Fatalf("balance = %d", overview.Totals.Balance.Cents)
	}

	// A mutation purges the memoized overview.
	do(t, srv, http.MethodPost, "/api/incomes",
		`{"name":"Bônus","category":"extra","amount":"10","date":"2025-03-15"}`)
	rr = do(t, srv, http.MethodGet, "/api/summary?year=2025&month=3", "")
	decode(t, rr, &overview)
	if overview.Totals.Income.Cents != 16000 {
		t.Fatalf("stale summary served: %d", overview.Totals.Income.Cents)
	}
}

func TestInsightsFallback(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/api/incomes",
		`{"name":"Salário","category":"salário","amount":"5000","date":"2025-03-01"}`)

	rr := do(t, srv, http.MethodPost, "/api/insights/limits", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("limits status = %d body=%s", rr.Code, rr.Body.String())
	}
	var resp spendingLimitsResponse
	decode(t, rr, &resp)
	if resp.Advice == "" || len(resp.AdviceLines) == 0 {
		t.Fatalf("limits = %+v", resp)
	}

	rr = do(t, srv, http.MethodPost, "/api/insights", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("insights status = %d", rr.Code)
	}
	var lines map[string][]string
	decode(t, rr, &lines)
	if len(lines["insights"]) == 0 {
		t.Fatalf("insights = %v", lines)
	}
}

func TestExportAndReset(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/api/incomes",
		`{"name":"Salário","category":"salário","amount":"5000","date":"2025-03-01"}`)

	rr := do(t, srv, http.MethodGet, "/api/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Fatalf("content disposition = %q", cd)
	}
	var doc map[string]json.RawMessage
	decode(t, rr, &doc)
	if _, ok := doc["incomeList"]; !ok {
		t.Fatalf("export = %s", rr.Body.String())
	}

	rr = do(t, srv, http.MethodPost, "/api/reset", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("reset status = %d", rr.Code)
	}
	rr = do(t, srv, http.MethodGet, "/api/incomes", "")
	var list []core.Income
	decode(t, rr, &list)
	if len(list) != 0 {
		t.Fatalf("state survived reset: %v", list)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodPatch, "/api/incomes", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rr.Code)
	}
}
