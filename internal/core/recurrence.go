package core

import (
	"sort"
	"time"
)

// AddMonthsClamped advances a date by the given number of calendar months,
// clamping the day to the last day of the target month (Jan 31 + 1 month is
// Feb 28, not Mar 3).
func AddMonthsClamped(d Date, months int) Date {
	year := d.Year()
	month := int(d.Month()) + months
	year += (month - 1) / 12
	month = (month-1)%12 + 1
	day := d.Day()
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return NewDate(year, month, day)
}

// ExpandExpense turns a submitted expense into the instances to store.
//
// A one-off expense yields a single instance carrying the timestamp-derived
// id. A monthly expense yields twelve independent instances, one per month
// starting at the submitted due date, each unpaid, each with its own id
// derived from the shared creation timestamp plus an index, and each with a
// copy of the alarm settings. After expansion the instances share nothing:
// editing or deleting one leaves the rest untouched.
func ExpandExpense(e Expense, createdAt time.Time) []Expense {
	e.IsRevenue = false
	if e.Recurrence != Monthly {
		e.ID = NewID(createdAt)
		return []Expense{e}
	}

	out := make([]Expense, 0, MonthlySeriesLength)
	for i := 0; i < MonthlySeriesLength; i++ {
		inst := e
		inst.ID = SeriesID(createdAt, i)
		inst.DueDate = AddMonthsClamped(e.DueDate, i)
		inst.Paid = false
		inst.AlarmOffsets = append([]int(nil), e.AlarmOffsets...)
		out = append(out, inst)
	}
	return out
}

// SortByDueDate orders expenses ascending by due date in place. The expense
// collection is kept in this order after every insert and edit.
func SortByDueDate(list []Expense) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].DueDate.Before(list[j].DueDate.Time)
	})
}
