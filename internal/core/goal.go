package core

import (
	"errors"
	"math"
	"strings"
)

const (
	Days   DurationUnit = "days"
	Weeks  DurationUnit = "weeks"
	Months DurationUnit = "months"
	Years  DurationUnit = "years"
)

// Fixed calendar conversion constants used to normalize plan durations
// to months.
const (
	daysPerMonth  = 30.44
	weeksPerMonth = 4.345
)

type (
	DurationUnit string

	// Goal is a savings target with a duration-derived monthly plan.
	// SavedAmount only grows, through Contribute, and is clamped to the
	// target; a goal shrinks only by being deleted.
	Goal struct {
		ID                string  `json:"id"`
		Name              string  `json:"name"`
		TargetValue       Money   `json:"targetValue"`
		SavedAmount       Money   `json:"savedAmount"`
		MonthsInPlan      float64 `json:"monthsInPlan"`
		MonthlyCommitment Money   `json:"monthlyCommitment"`
	}
)

var (
	ErrInvalidTarget   = errors.New("invalid goal target")
	ErrInvalidDuration = errors.New("invalid goal duration")
)

func (u DurationUnit) IsValid() bool {
	switch u {
	case Days, Weeks, Months, Years:
		return true
	default:
		return false
	}
}

// MonthsFor normalizes a plan duration to months.
func (u DurationUnit) MonthsFor(duration float64) float64 {
	switch u {
	case Days:
		return duration / daysPerMonth
	case Weeks:
		return duration / weeksPerMonth
	case Years:
		return duration * 12
	default:
		return duration
	}
}

// NewGoal builds a goal from a user-specified target and plan duration.
// The monthly commitment is the target spread evenly over the plan.
func NewGoal(id, name string, target Money, duration float64, unit DurationUnit) (Goal, error) {
	if strings.TrimSpace(name) == "" {
		return Goal{}, ErrEmptyName
	}
	if err := target.Validate(); err != nil {
		return Goal{}, ErrInvalidTarget
	}
	if duration <= 0 || !unit.IsValid() {
		return Goal{}, ErrInvalidDuration
	}

	months := unit.MonthsFor(duration)
	commitment := Money{Cents: int64(math.Round(float64(target.Cents) / months))}

	return Goal{
		ID:                id,
		Name:              name,
		TargetValue:       target,
		SavedAmount:       Money{},
		MonthsInPlan:      months,
		MonthlyCommitment: commitment,
	}, nil
}

// Contribute adds value to the saved amount, clamped to the target.
// It reports whether this contribution crossed the target for the first
// time, so callers can raise a one-off completion notice.
func (g *Goal) Contribute(value Money) (reached bool, err error) {
	if err := value.Validate(); err != nil {
		return false, err
	}
	before := g.SavedAmount.Cents
	after := before + value.Cents
	if after >= g.TargetValue.Cents {
		g.SavedAmount = g.TargetValue
		return before < g.TargetValue.Cents, nil
	}
	g.SavedAmount = Money{Cents: after}
	return false, nil
}

// Progress returns completion as a fraction in [0,1].
func (g Goal) Progress() float64 {
	if g.TargetValue.Cents <= 0 {
		return 0
	}
	return float64(g.SavedAmount.Cents) / float64(g.TargetValue.Cents)
}
