// Package state owns the global application state: income and expense
// lists, savings goals, the user profile and the category color cache.
//
// The Store applies one synchronous mutation at a time and notifies
// subscribers after each one; persistence is just a subscriber that
// re-serializes the full snapshot to the document store, so the side
// effect stays visible and independently testable.
package state

import (
	"encoding/json"
	"fmt"

	"saldo/internal/colors"
	"saldo/internal/core"
)

// Snapshot is a copy of the whole application state at one point in time.
type Snapshot struct {
	IncomeList  []core.Income  `json:"incomeList"`
	ExpenseList []core.Expense `json:"expenseList"`
	GoalList    []core.Goal    `json:"goalList"`
	User        core.User      `json:"user"`
	Colors      colors.Cache   `json:"colorCache"`
}

// persistedState is the document stored under storage.StateKey. The color
// cache lives under its own key and is not part of this document.
type persistedState struct {
	IncomeList  []core.Income  `json:"incomeList"`
	ExpenseList []core.Expense `json:"expenseList"`
	GoalList    []core.Goal    `json:"goalList"`
	Username    string         `json:"username"`
}

func initialSnapshot() Snapshot {
	return Snapshot{
		User:   core.User{Username: core.DefaultUsername},
		Colors: colors.Cache{},
	}
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		IncomeList:  append([]core.Income(nil), s.IncomeList...),
		ExpenseList: append([]core.Expense(nil), s.ExpenseList...),
		GoalList:    append([]core.Goal(nil), s.GoalList...),
		User:        s.User,
		Colors:      make(colors.Cache, len(s.Colors)),
	}
	for k, v := range s.Colors {
		out.Colors[k] = v
	}
	return out
}

func (s Snapshot) marshalState() (string, error) {
	doc := persistedState{
		IncomeList:  s.IncomeList,
		ExpenseList: s.ExpenseList,
		GoalList:    s.GoalList,
		Username:    s.User.Username,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal state document: %w", err)
	}
	return string(data), nil
}

func (s Snapshot) marshalColors() (string, error) {
	data, err := json.Marshal(s.Colors)
	if err != nil {
		return "", fmt.Errorf("marshal color cache: %w", err)
	}
	return string(data), nil
}

// Export serializes the full snapshot, color cache included, as the
// downloadable backup document. Import is intentionally not implemented;
// the backup is write-only.
func (s Snapshot) Export() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	return data, nil
}
