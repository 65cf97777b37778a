// Package insights adapts aggregated financial data for an external
// generative-text service and shapes its replies for the presentation
// layer.
//
// The canonical request schema uses absolute currency amounts. A
// percentage-based variant existed historically; the two are not
// interchangeable without conversion, so only the absolute form is
// implemented here.
package insights

import (
	"strings"

	"saldo/internal/core"
	"saldo/internal/state"
)

// SpendingInput is the absolute-amount request payload.
type SpendingInput struct {
	TotalIncome           float64 `json:"totalIncome"`
	TotalExpenses         float64 `json:"totalExpenses"`
	EssentialExpenses     float64 `json:"essentialExpenses"`
	DiscretionaryExpenses float64 `json:"discretionaryExpenses"`
	SavingsGoal           float64 `json:"savingsGoal"`
}

// SpendingAnalysis is the structured reply: suggested limits plus a single
// Portuguese advice string. Numeric outputs are used as returned, without
// re-validation.
type SpendingAnalysis struct {
	DailySpendingLimit  float64 `json:"dailySpendingLimit"`
	WeeklySpendingLimit float64 `json:"weeklySpendingLimit"`
	Advice              string  `json:"spendingAdvice"`
}

// InsightsInput is the raw-list request variant, producing free-text
// insight strings instead of limits.
type InsightsInput struct {
	IncomeList  []core.Income  `json:"incomeList"`
	ExpenseList []core.Expense `json:"expenseList"`
	GoalList    []core.Goal    `json:"goalList"`
}

// essentialCategories are the expense categories treated as
// non-discretionary when splitting spending for analysis.
var essentialCategories = map[string]bool{
	"moradia":     true,
	"contas":      true,
	"saúde":       true,
	"transporte":  true,
	"alimentação": true,
}

// BuildSpendingInput aggregates a state snapshot into the request payload.
func BuildSpendingInput(snap state.Snapshot) SpendingInput {
	var totalIncome, totalExpenses, essential, commitment core.Money
	for _, g := range snap.IncomeList {
		totalIncome = totalIncome.Add(g.Amount)
	}
	for _, e := range snap.ExpenseList {
		totalExpenses = totalExpenses.Add(e.Amount)
		if essentialCategories[strings.ToLower(e.Category)] {
			essential = essential.Add(e.Amount)
		}
	}
	for _, g := range snap.GoalList {
		commitment = commitment.Add(g.MonthlyCommitment)
	}

	return SpendingInput{
		TotalIncome:           totalIncome.Reais(),
		TotalExpenses:         totalExpenses.Reais(),
		EssentialExpenses:     essential.Reais(),
		DiscretionaryExpenses: totalExpenses.Sub(essential).Reais(),
		SavingsGoal:           commitment.Reais(),
	}
}

// SplitAdvice divides the advice string into sentences for sequential
// display, splitting on the literal ". ".
func SplitAdvice(advice string) []string {
	parts := strings.Split(advice, ". ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
