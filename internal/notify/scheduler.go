package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"saldo/internal/core"
	"saldo/internal/state"
)

// entry holds one expense's registered timers. remaining counts the
// timers that have not fired yet, so the registry entry can be dropped
// once the last one goes off.
type entry struct {
	timers    []*time.Timer
	remaining int
}

// Scheduler owns the in-memory reminder timer registry: one cancellable
// timer per (expense id, alarm offset).
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*entry

	notifier Notifier
	logger   *slog.Logger

	// Wall-clock time of day reminders fire at.
	fireHour   int
	fireMinute int

	// A fire time missed by less than lookback (a restart at the wrong
	// moment, a rescan landing after the scan hour) is delivered late
	// instead of dropped.
	lookback time.Duration

	now func() time.Time
}

func NewScheduler(notifier Notifier, logger *slog.Logger, fireHour, fireMinute int, lookback time.Duration) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		timers:     make(map[string]*entry),
		notifier:   notifier,
		logger:     logger,
		fireHour:   fireHour,
		fireMinute: fireMinute,
		lookback:   lookback,
		now:        time.Now,
	}
}

// Schedule registers timers for an unpaid expense's alarm offsets,
// replacing any timers already registered for the same id. Offsets whose
// fire time passed more than the lookback window ago are skipped; overdue
// expenses never get reminders. Returns the number of timers registered.
func (s *Scheduler) Schedule(e core.Expense) int {
	s.Cancel(e.ID)

	if e.Paid || len(e.AlarmOffsets) == 0 {
		return 0
	}

	now := s.now()
	type pending struct {
		delay time.Duration
		days  int
	}
	var fires []pending
	for _, off := range e.AlarmOffsets {
		if off < 0 {
			continue
		}
		fireAt := time.Date(e.DueDate.Year(), e.DueDate.Month(), e.DueDate.Day(),
			s.fireHour, s.fireMinute, 0, 0, time.Local).AddDate(0, 0, -off)
		delay := fireAt.Sub(now)
		if delay <= 0 {
			if s.lookback <= 0 || -delay > s.lookback || core.DaysUntil(e.DueDate, now) < 0 {
				continue
			}
			delay = 0
		}
		fires = append(fires, pending{delay: delay, days: off})
	}
	if len(fires) == 0 {
		return 0
	}

	ent := &entry{remaining: len(fires)}
	expense := e
	s.mu.Lock()
	for _, f := range fires {
		days := f.days
		t := time.AfterFunc(f.delay, func() {
			s.fire(expense, days)
			s.mu.Lock()
			ent.remaining--
			if ent.remaining == 0 && s.timers[expense.ID] == ent {
				delete(s.timers, expense.ID)
			}
			s.mu.Unlock()
		})
		ent.timers = append(ent.timers, t)
	}
	s.timers[e.ID] = ent
	s.mu.Unlock()

	s.logger.Debug("Reminders scheduled", "id", e.ID, "count", len(fires))
	return len(fires)
}

func (s *Scheduler) fire(e core.Expense, daysUntilDue int) {
	r := NewReminder(e, daysUntilDue)
	if err := s.notifier.Notify(context.Background(), r); err != nil {
		s.logger.Warn("Reminder delivery failed", "tag", r.Tag, "error", err)
	}
}

// Cancel stops and drops every timer registered for an expense id.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	ent := s.timers[id]
	delete(s.timers, id)
	s.mu.Unlock()

	if ent != nil {
		for _, t := range ent.timers {
			t.Stop()
		}
	}
}

// CancelAll empties the registry.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	all := s.timers
	s.timers = make(map[string]*entry)
	s.mu.Unlock()

	for _, ent := range all {
		for _, t := range ent.timers {
			t.Stop()
		}
	}
}

// Pending returns how many expense ids currently have timers registered.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Rescan rebuilds the registry from the current expense list. Run once at
// startup and then daily, since timers do not survive a restart.
func (s *Scheduler) Rescan(expenses []core.Expense) int {
	s.CancelAll()
	total := 0
	for _, e := range expenses {
		total += s.Schedule(e)
	}
	s.logger.Info("Reminder rescan complete", "expenses", len(expenses), "timers", total)
	return total
}

// Listener returns the store subscription keeping the registry in step
// with expense mutations: adds and edits (re)schedule, deletes cancel, a
// paid expense loses its timers, and a goal crossing its target raises an
// immediate congratulation notice.
func (s *Scheduler) Listener() state.Listener {
	return func(ev state.Event, snap state.Snapshot) {
		switch ev.Op {
		case state.OpAddExpense, state.OpEditExpense:
			for _, e := range ev.Expenses {
				s.Schedule(e)
			}
		case state.OpTogglePaid:
			for _, e := range ev.Expenses {
				s.Schedule(e) // Schedule cancels first; paid means no new timers
			}
		case state.OpDeleteExpense:
			s.Cancel(ev.ID)
		case state.OpReset:
			s.CancelAll()
		case state.OpContributeGoal:
			if ev.Reached {
				s.congratulate(ev.ID, snap)
			}
		}
	}
}

func (s *Scheduler) congratulate(goalID string, snap state.Snapshot) {
	for _, g := range snap.GoalList {
		if g.ID == goalID {
			r := Reminder{
				Tag:   "goal-" + g.ID,
				Title: "Parabéns!",
				Body:  "Meta \"" + g.Name + "\" atingida!",
			}
			if err := s.notifier.Notify(context.Background(), r); err != nil {
				s.logger.Warn("Goal notice delivery failed", "tag", r.Tag, "error", err)
			}
			return
		}
	}
}
