package insights

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"saldo/internal/core"
	"saldo/internal/state"
)

func snapshotFixture() state.Snapshot {
	return state.Snapshot{
		IncomeList: []core.Income{
			{Transaction: core.Transaction{ID: "i1", Name: "Salário", Category: "salário", Amount: core.Money{Cents: 500000}, IsRevenue: true}, Date: core.NewDate(2025, 3, 1)},
		},
		ExpenseList: []core.Expense{
			{Transaction: core.Transaction{ID: "e1", Name: "Aluguel", Category: "Moradia", Amount: core.Money{Cents: 120000}}, DueDate: core.NewDate(2025, 3, 5), Paid: true, Recurrence: core.Once},
			{Transaction: core.Transaction{ID: "e2", Name: "Cinema", Category: "lazer", Amount: core.Money{Cents: 5000}}, DueDate: core.NewDate(2025, 3, 20), Recurrence: core.Once},
		},
		GoalList: []core.Goal{
			{ID: "g1", Name: "Viagem", TargetValue: core.Money{Cents: 120000}, MonthsInPlan: 12, MonthlyCommitment: core.Money{Cents: 10000}},
		},
		User: core.User{Username: "Maria"},
	}
}

func TestBuildSpendingInput(t *testing.T) {
	got := BuildSpendingInput(snapshotFixture())

	if got.TotalIncome != 5000 {
		t.Fatalf("total income = %v", got.TotalIncome)
	}
	if got.TotalExpenses != 1250 {
		t.Fatalf("total expenses = %v", got.TotalExpenses)
	}
	// "Moradia" matches the essential set case-insensitively.
	if got.EssentialExpenses != 1200 {
		t.Fatalf("essential = %v", got.EssentialExpenses)
	}
	if got.DiscretionaryExpenses != 50 {
		t.Fatalf("discretionary = %v", got.DiscretionaryExpenses)
	}
	if got.SavingsGoal != 100 {
		t.Fatalf("savings goal = %v", got.SavingsGoal)
	}
}

func TestDaysRemainingInMonth(t *testing.T) {
	// March 28th noon: 30, 31 are ahead plus the rest of the 28th.
	got := DaysRemainingInMonth(time.Date(2025, 3, 28, 12, 0, 0, 0, time.UTC))
	if got != 3 {
		t.Fatalf("days remaining = %d", got)
	}
	// Midnight of the last day leaves nothing.
	if got := DaysRemainingInMonth(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)); got != 0 {
		t.Fatalf("last day = %d", got)
	}
}

func TestFallbackLimits(t *testing.T) {
	daily, weekly := FallbackLimits(core.Money{Cents: 380000}, core.Money{Cents: 80000}, 10)
	if daily != 300 {
		t.Fatalf("daily = %v", daily)
	}
	if weekly != 2100 {
		t.Fatalf("weekly = %v", weekly)
	}

	daily, weekly = FallbackLimits(core.Money{Cents: 380000}, core.Money{}, 0)
	if daily != 0 || weekly != 0 {
		t.Fatalf("no days left: daily=%v weekly=%v", daily, weekly)
	}
}

func TestFallbackAnalysis(t *testing.T) {
	now := time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC)
	got := FallbackAnalysis(snapshotFixture(), now)

	// balance 5000-1200=3800, unpaid 50, 10 days left.
	if math.Abs(got.DailySpendingLimit-375) > 1e-9 {
		t.Fatalf("daily = %v", got.DailySpendingLimit)
	}
	if math.Abs(got.WeeklySpendingLimit-2625) > 1e-9 {
		t.Fatalf("weekly = %v", got.WeeklySpendingLimit)
	}
	if got.Advice != "Você está comprometido a economizar 100.00 mensalmente para suas metas." {
		t.Fatalf("advice = %q", got.Advice)
	}
}

func TestSplitAdvice(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Gaste menos. Economize mais. Invista.", []string{"Gaste menos", "Economize mais", "Invista."}},
		{"Uma frase só", []string{"Uma frase só"}},
		{"", nil},
	}
	for _, tc := range cases {
		got := SplitAdvice(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("SplitAdvice(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

type stubClient struct {
	analysis SpendingAnalysis
	insights []string
	err      error
}

func (c *stubClient) AnalyzeSpending(context.Context, SpendingInput) (SpendingAnalysis, error) {
	return c.analysis, c.err
}

func (c *stubClient) GenerateInsights(context.Context, InsightsInput) ([]string, error) {
	return c.insights, c.err
}

func TestServiceWithoutClientUsesFallback(t *testing.T) {
	svc := NewService(nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC) }

	got, err := svc.AnalyzeSpending(context.Background(), snapshotFixture())
	if err != nil {
		t.Fatalf("fallback analysis: %v", err)
	}
	if got.DailySpendingLimit == 0 {
		t.Fatal("fallback returned no limits")
	}

	lines, err := svc.GenerateInsights(context.Background(), snapshotFixture())
	if err != nil || len(lines) != 1 {
		t.Fatalf("fallback insights: %v %v", lines, err)
	}
}

func TestServicePassesThroughClientResults(t *testing.T) {
	svc := NewService(&stubClient{
		analysis: SpendingAnalysis{DailySpendingLimit: 12.5, WeeklySpendingLimit: 87.5, Advice: "Tudo certo."},
		insights: []string{"a", "b"},
	}, nil)

	got, err := svc.AnalyzeSpending(context.Background(), snapshotFixture())
	if err != nil || got.DailySpendingLimit != 12.5 {
		t.Fatalf("analysis = %+v err=%v", got, err)
	}
	lines, err := svc.GenerateInsights(context.Background(), snapshotFixture())
	if err != nil || len(lines) != 2 {
		t.Fatalf("insights = %v err=%v", lines, err)
	}
}

func TestServiceMasksProviderErrors(t *testing.T) {
	svc := NewService(&stubClient{err: errors.New("429 too many requests")}, nil)

	if _, err := svc.AnalyzeSpending(context.Background(), snapshotFixture()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("analysis error = %v", err)
	}
	if _, err := svc.GenerateInsights(context.Background(), snapshotFixture()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("insights error = %v", err)
	}
}

func TestCleanMarkdownWrapper(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
	}
	for _, tc := range cases {
		if got := cleanMarkdownWrapper(tc.in); got != tc.want {
			t.Fatalf("cleanMarkdownWrapper(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
