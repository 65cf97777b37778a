package insights

import (
	"fmt"
	"math"
	"time"

	"saldo/internal/core"
	"saldo/internal/state"
)

// DaysRemainingInMonth counts days from now to the last day of the current
// month, rounded up.
func DaysRemainingInMonth(now time.Time) int {
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location())
	remaining := lastDay.Sub(now).Hours() / 24
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining))
}

// FallbackLimits is the deterministic limit computation used when the
// generative service is unavailable: spendable cash spread over the days
// left in the month.
//
//	dailyLimit  = (balanceRemaining - unpaidExpenseTotal) / daysRemaining
//	weeklyLimit = dailyLimit * 7
//
// with both limits zero when no days remain.
func FallbackLimits(balanceRemaining, unpaidExpenseTotal core.Money, daysRemaining int) (daily, weekly float64) {
	if daysRemaining <= 0 {
		return 0, 0
	}
	daily = balanceRemaining.Sub(unpaidExpenseTotal).Reais() / float64(daysRemaining)
	return daily, daily * 7
}

// FallbackAnalysis computes limits from a snapshot without calling the
// external service.
func FallbackAnalysis(snap state.Snapshot, now time.Time) SpendingAnalysis {
	var totalIncome, totalPaid, totalUnpaid, commitment core.Money
	for _, g := range snap.IncomeList {
		totalIncome = totalIncome.Add(g.Amount)
	}
	for _, e := range snap.ExpenseList {
		if e.Paid {
			totalPaid = totalPaid.Add(e.Amount)
		} else {
			totalUnpaid = totalUnpaid.Add(e.Amount)
		}
	}
	for _, g := range snap.GoalList {
		commitment = commitment.Add(g.MonthlyCommitment)
	}

	balance := totalIncome.Sub(totalPaid)
	daily, weekly := FallbackLimits(balance, totalUnpaid, DaysRemainingInMonth(now))

	return SpendingAnalysis{
		DailySpendingLimit:  daily,
		WeeklySpendingLimit: weekly,
		Advice:              goalProgressSummary(commitment),
	}
}

func goalProgressSummary(commitment core.Money) string {
	return fmt.Sprintf("Você está comprometido a economizar %.2f mensalmente para suas metas.",
		commitment.Reais())
}
