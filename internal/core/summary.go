package core

import (
	"sort"
	"time"
)

// UnclassifiedCategory is the label items without a category fall under
// in breakdowns.
const UnclassifiedCategory = "Não Classificado"

type (
	// CategoryAmount represents an amount aggregated by category name.
	CategoryAmount struct {
		Name   string `json:"name"`
		Amount Money  `json:"amount"`
	}

	// MonthTotals summarizes one calendar month. Balance subtracts only
	// paid expenses: it reflects cash actually disbursed, not accrued.
	MonthTotals struct {
		Income   Money `json:"income"`
		Expenses Money `json:"expenses"`
		Paid     Money `json:"paid"`
		Balance  Money `json:"balance"`
	}

	// MonthOverview is a compact summary for a specific year+month.
	MonthOverview struct {
		Year              int              `json:"year"`
		Month             int              `json:"month"` // 1-12
		Totals            MonthTotals      `json:"totals"`
		IncomeByCategory  []CategoryAmount `json:"incomeByCategory"`
		ExpenseByCategory []CategoryAmount `json:"expenseByCategory"`
	}

	// UpcomingAlarm pairs an unpaid expense with the whole days left
	// until it is due.
	UpcomingAlarm struct {
		Expense      Expense `json:"expense"`
		DaysUntilDue int     `json:"daysUntilDue"`
	}
)

// IncomeForMonth filters incomes whose date falls in the given year+month.
func IncomeForMonth(list []Income, year, month int) []Income {
	var out []Income
	for _, g := range list {
		if g.Date.SameMonth(year, month) {
			out = append(out, g)
		}
	}
	return out
}

// ExpensesForMonth filters expenses whose due date falls in the given
// year+month.
func ExpensesForMonth(list []Expense, year, month int) []Expense {
	var out []Expense
	for _, e := range list {
		if e.DueDate.SameMonth(year, month) {
			out = append(out, e)
		}
	}
	return out
}

// TotalsForMonth sums the month's incomes and expenses.
func TotalsForMonth(incomes []Income, expenses []Expense, year, month int) MonthTotals {
	var t MonthTotals
	for _, g := range IncomeForMonth(incomes, year, month) {
		t.Income = t.Income.Add(g.Amount)
	}
	for _, e := range ExpensesForMonth(expenses, year, month) {
		t.Expenses = t.Expenses.Add(e.Amount)
		if e.Paid {
			t.Paid = t.Paid.Add(e.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Paid)
	return t
}

// IncomeByCategory groups and sums incomes by category label, largest first.
func IncomeByCategory(list []Income) []CategoryAmount {
	sums := make(map[string]int64)
	for _, g := range list {
		sums[categoryLabel(g.Category)] += g.Amount.Cents
	}
	return sortedBreakdown(sums)
}

// ExpenseByCategory groups and sums expenses by category label, largest first.
func ExpenseByCategory(list []Expense) []CategoryAmount {
	sums := make(map[string]int64)
	for _, e := range list {
		sums[categoryLabel(e.Category)] += e.Amount.Cents
	}
	return sortedBreakdown(sums)
}

func categoryLabel(c string) string {
	if c == "" {
		return UnclassifiedCategory
	}
	return c
}

func sortedBreakdown(sums map[string]int64) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(sums))
	for name, cents := range sums {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Overview assembles the month summary consumed by the presentation layer.
func Overview(incomes []Income, expenses []Expense, year, month int) MonthOverview {
	return MonthOverview{
		Year:              year,
		Month:             month,
		Totals:            TotalsForMonth(incomes, expenses, year, month),
		IncomeByCategory:  IncomeByCategory(IncomeForMonth(incomes, year, month)),
		ExpenseByCategory: ExpenseByCategory(ExpensesForMonth(expenses, year, month)),
	}
}

// DaysUntil counts whole days from today to the due date, both truncated
// to midnight. Negative means overdue.
func DaysUntil(due Date, today time.Time) int {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(t).Hours() / 24)
}

// UpcomingAlarms selects unpaid expenses whose remaining days match one of
// their alarm offsets, ascending by days left. Overdue expenses never
// trigger alarms, whatever their offsets say.
func UpcomingAlarms(list []Expense, today time.Time) []UpcomingAlarm {
	var out []UpcomingAlarm
	for _, e := range list {
		if e.Paid || len(e.AlarmOffsets) == 0 {
			continue
		}
		days := DaysUntil(e.DueDate, today)
		if days < 0 {
			continue
		}
		for _, off := range e.AlarmOffsets {
			if off == days {
				out = append(out, UpcomingAlarm{Expense: e, DaysUntilDue: days})
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntilDue < out[j].DaysUntilDue
	})
	return out
}
