package state

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"saldo/internal/colors"
	"saldo/internal/core"
	"saldo/internal/storage"
)

// Op identifies a state mutation for subscribers.
type Op string

const (
	OpLoad           Op = "load"
	OpAddIncome      Op = "add_income"
	OpEditIncome     Op = "edit_income"
	OpDeleteIncome   Op = "delete_income"
	OpAddExpense     Op = "add_expense"
	OpEditExpense    Op = "edit_expense"
	OpDeleteExpense  Op = "delete_expense"
	OpTogglePaid     Op = "toggle_paid"
	OpAddGoal        Op = "add_goal"
	OpContributeGoal Op = "contribute_goal"
	OpDeleteGoal     Op = "delete_goal"
	OpSetUsername    Op = "set_username"
	OpSetColors      Op = "set_colors"
	OpAssignColor    Op = "assign_color"
	OpReset          Op = "reset"
)

// Event describes a completed mutation. Expenses carries the instances an
// expense mutation touched so the reminder scheduler can act without
// re-reading state; Reached marks the first crossing of a goal target.
type Event struct {
	Op       Op
	ID       string
	Expenses []core.Expense
	Reached  bool
}

// Listener receives every mutation with a snapshot taken after it applied.
type Listener func(Event, Snapshot)

var ErrNotFound = errors.New("entity not found")

// Store is the single owner of application state. Mutations apply in
// memory under a lock and fan out to subscribers in apply order.
type Store struct {
	mu        sync.RWMutex
	snap      Snapshot
	listeners []Listener

	// notifyMu serializes listener dispatch so subscribers (persistence
	// included) observe mutations in the order they applied. Acquired
	// while mu is still held; without that, two concurrent mutations
	// could persist their snapshots inverted and durably drop the later
	// acknowledged write.
	notifyMu sync.Mutex

	docs   storage.DocumentStore
	logger *slog.Logger

	loadWarning string

	// now is the clock used for timestamp-derived ids.
	now func() time.Time
}

func NewStore(docs storage.DocumentStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		snap:   initialSnapshot(),
		docs:   docs,
		logger: logger,
		now:    time.Now,
	}
}

// Load reads both storage keys and rebuilds in-memory state. Missing or
// malformed documents are not fatal: state falls back to empty defaults
// and the problem is kept as a user-visible warning.
func (s *Store) Load(ctx context.Context) error {
	snap := initialSnapshot()
	var warnings []string

	raw, ok, err := s.docs.Get(ctx, storage.StateKey)
	if err != nil {
		return err
	}
	if ok {
		var doc persistedState
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			s.logger.Warn("Malformed state document, starting empty",
				"key", storage.StateKey, "error", err)
			warnings = append(warnings, "não foi possível carregar seus dados")
		} else {
			snap.IncomeList = doc.IncomeList
			snap.ExpenseList = doc.ExpenseList
			snap.GoalList = doc.GoalList
			if doc.Username != "" {
				snap.User.Username = doc.Username
			}
		}
	}

	rawColors, ok, err := s.docs.Get(ctx, storage.ColorKey)
	if err != nil {
		return err
	}
	if ok {
		var cache colors.Cache
		if err := json.Unmarshal([]byte(rawColors), &cache); err != nil {
			s.logger.Warn("Malformed color cache, starting empty",
				"key", storage.ColorKey, "error", err)
			warnings = append(warnings, "não foi possível carregar suas cores")
		} else if cache != nil {
			snap.Colors = cache
		}
	}

	core.SortByDueDate(snap.ExpenseList)

	s.logger.Info("State loaded",
		"incomes", len(snap.IncomeList),
		"expenses", len(snap.ExpenseList),
		"goals", len(snap.GoalList),
		"colors", len(snap.Colors))

	s.mu.Lock()
	s.snap = snap
	s.loadWarning = strings.Join(warnings, "; ")
	s.commit(Event{Op: OpLoad})
	return nil
}

// LoadWarning returns the non-fatal problem encountered during Load, if any.
func (s *Store) LoadWarning() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadWarning
}

// Subscribe registers a listener invoked synchronously after every
// mutation. Not safe to call concurrently with mutations; wire listeners
// up during startup.
func (s *Store) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// State returns a copy of the current snapshot.
func (s *Store) State() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// commit finishes a mutation: it captures the post-mutation snapshot and
// delivers the event to every listener. Must be called with s.mu held;
// commit releases it. Taking notifyMu before releasing s.mu pins dispatch
// to apply order, so a slow persist of an older snapshot can never land
// on top of a newer one.
func (s *Store) commit(ev Event) {
	snap := s.snap.clone()
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	for _, l := range s.listeners {
		l(ev, snap)
	}
}

// AddIncome validates and stores a new income entry. Invalid submissions
// are declined without creating a partial entity.
func (s *Store) AddIncome(ctx context.Context, g core.Income) (core.Income, error) {
	g.IsRevenue = true
	g.ID = core.NewID(s.now())
	if err := g.Validate(); err != nil {
		return core.Income{}, err
	}

	s.logger.InfoContext(ctx, "Income added", "id", g.ID, "amount_cents", g.Amount.Cents)

	s.mu.Lock()
	s.snap.IncomeList = append(s.snap.IncomeList, g)
	s.commit(Event{Op: OpAddIncome, ID: g.ID})
	return g, nil
}

// EditIncome replaces the income with the same id in place.
func (s *Store) EditIncome(ctx context.Context, g core.Income) error {
	g.IsRevenue = true
	if err := g.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	found := false
	for i := range s.snap.IncomeList {
		if s.snap.IncomeList[i].ID == g.ID {
			s.snap.IncomeList[i] = g
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.commit(Event{Op: OpEditIncome, ID: g.ID})
	return nil
}

// DeleteIncome removes exactly the entry with the given id.
func (s *Store) DeleteIncome(ctx context.Context, id string) error {
	s.mu.Lock()
	before := len(s.snap.IncomeList)
	kept := s.snap.IncomeList[:0]
	for _, g := range s.snap.IncomeList {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	s.snap.IncomeList = kept
	if len(kept) == before {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.commit(Event{Op: OpDeleteIncome, ID: id})
	return nil
}

// AddExpense validates a submitted expense and stores its expansion: one
// instance for a one-off, twelve independent instances for a monthly
// recurrence. The collection stays sorted by due date.
func (s *Store) AddExpense(ctx context.Context, e core.Expense) ([]core.Expense, error) {
	e.IsRevenue = false
	if e.Recurrence == "" {
		e.Recurrence = core.Once
	}
	// Validate with a placeholder id; real ids come from expansion.
	draft := e
	draft.ID = "draft"
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	instances := core.ExpandExpense(e, s.now())

	s.logger.InfoContext(ctx, "Expense added",
		"id", instances[0].ID,
		"instances", len(instances),
		"recurrence", string(e.Recurrence))

	s.mu.Lock()
	s.snap.ExpenseList = append(s.snap.ExpenseList, instances...)
	core.SortByDueDate(s.snap.ExpenseList)
	s.commit(Event{Op: OpAddExpense, ID: instances[0].ID, Expenses: instances})
	return instances, nil
}

// EditExpense replaces one expense instance in place and re-sorts the
// collection. Other instances of an expanded series are untouched.
func (s *Store) EditExpense(ctx context.Context, e core.Expense) error {
	e.IsRevenue = false
	if e.Recurrence == "" {
		e.Recurrence = core.Once
	}
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	found := false
	for i := range s.snap.ExpenseList {
		if s.snap.ExpenseList[i].ID == e.ID {
			s.snap.ExpenseList[i] = e
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrNotFound
	}
	core.SortByDueDate(s.snap.ExpenseList)
	s.commit(Event{Op: OpEditExpense, ID: e.ID, Expenses: []core.Expense{e}})
	return nil
}

// DeleteExpense removes exactly the instance with the given id.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	before := len(s.snap.ExpenseList)
	kept := s.snap.ExpenseList[:0]
	for _, e := range s.snap.ExpenseList {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.snap.ExpenseList = kept
	if len(kept) == before {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.commit(Event{Op: OpDeleteExpense, ID: id})
	return nil
}

// TogglePaid flips the paid flag of one expense and returns the new value.
func (s *Store) TogglePaid(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	var paid bool
	found := false
	var toggled core.Expense
	for i := range s.snap.ExpenseList {
		if s.snap.ExpenseList[i].ID == id {
			s.snap.ExpenseList[i].Paid = !s.snap.ExpenseList[i].Paid
			paid = s.snap.ExpenseList[i].Paid
			toggled = s.snap.ExpenseList[i]
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return false, ErrNotFound
	}
	s.commit(Event{Op: OpTogglePaid, ID: id, Expenses: []core.Expense{toggled}})
	return paid, nil
}

// AddGoal creates a goal from a target and a plan duration.
func (s *Store) AddGoal(ctx context.Context, name string, target core.Money, duration float64, unit core.DurationUnit) (core.Goal, error) {
	g, err := core.NewGoal(core.NewID(s.now()), name, target, duration, unit)
	if err != nil {
		return core.Goal{}, err
	}

	s.logger.InfoContext(ctx, "Goal created",
		"id", g.ID, "target_cents", g.TargetValue.Cents, "months", g.MonthsInPlan)

	s.mu.Lock()
	s.snap.GoalList = append(s.snap.GoalList, g)
	s.commit(Event{Op: OpAddGoal, ID: g.ID})
	return g, nil
}

// ContributeToGoal increments a goal's saved amount, clamped to its
// target, and reports whether the target was crossed for the first time.
func (s *Store) ContributeToGoal(ctx context.Context, id string, value core.Money) (core.Goal, bool, error) {
	s.mu.Lock()
	var out core.Goal
	var reached bool
	found := false
	for i := range s.snap.GoalList {
		if s.snap.GoalList[i].ID == id {
			r, err := s.snap.GoalList[i].Contribute(value)
			if err != nil {
				s.mu.Unlock()
				return core.Goal{}, false, err
			}
			out = s.snap.GoalList[i]
			reached = r
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return core.Goal{}, false, ErrNotFound
	}
	s.commit(Event{Op: OpContributeGoal, ID: id, Reached: reached})
	if reached {
		s.logger.InfoContext(ctx, "Goal reached", "id", id, "name", out.Name)
	}
	return out, reached, nil
}

// DeleteGoal removes exactly the goal with the given id.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	before := len(s.snap.GoalList)
	kept := s.snap.GoalList[:0]
	for _, g := range s.snap.GoalList {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	s.snap.GoalList = kept
	if len(kept) == before {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.commit(Event{Op: OpDeleteGoal, ID: id})
	return nil
}

// SetUsername updates the profile name.
func (s *Store) SetUsername(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return core.ErrEmptyName
	}

	s.mu.Lock()
	s.snap.User.Username = username
	s.commit(Event{Op: OpSetUsername})
	return nil
}

// CustomColor is one user-picked category color in hex form.
type CustomColor struct {
	Category string `json:"category"`
	Hex      string `json:"color"`
}

// SetCustomColors stores user overrides in the color cache, flagged custom.
func (s *Store) SetCustomColors(ctx context.Context, picks []CustomColor) error {
	if len(picks) == 0 {
		return nil
	}

	s.mu.Lock()
	for _, p := range picks {
		if strings.TrimSpace(p.Category) == "" {
			continue
		}
		colors.SetCustom(p.Category, p.Hex, s.snap.Colors)
	}
	s.commit(Event{Op: OpSetColors})
	return nil
}

// CategoryColor resolves the display color for a category. A first lookup
// assigns and caches a color, which is itself a persisted state change.
func (s *Store) CategoryColor(ctx context.Context, category string, isRevenue bool) string {
	key := strings.ToLower(category)

	s.mu.Lock()
	_, existed := s.snap.Colors[key]
	color := colors.ColorFor(category, isRevenue, s.snap.Colors)
	if existed {
		s.mu.Unlock()
		return color
	}
	s.commit(Event{Op: OpAssignColor, ID: key})
	return color
}

// Reset clears both storage keys and restores the initial empty state.
// The presentation layer is expected to fully reload afterwards.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.docs.Delete(ctx, storage.StateKey); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, storage.ColorKey); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Application state reset")

	s.mu.Lock()
	s.snap = initialSnapshot()
	s.loadWarning = ""
	s.commit(Event{Op: OpReset})
	return nil
}

// Export returns the downloadable backup document.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	return s.State().Export()
}
