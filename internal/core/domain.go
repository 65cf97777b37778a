package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	Once    Recurrence = "once"
	Monthly Recurrence = "monthly"
)

// MonthlySeriesLength is how many discrete instances a monthly expense
// expands into at creation time: one per month for the next year.
const MonthlySeriesLength = 12

type (
	Recurrence string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64 `json:"cents"`
	}

	// Transaction holds the fields shared by incomes and expenses.
	Transaction struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Category  string `json:"category"`
		Amount    Money  `json:"amount"`
		IsRevenue bool   `json:"isRevenue"`
	}

	// Income is money received on a calendar date.
	Income struct {
		Transaction
		Date Date `json:"date"`
	}

	// Expense is money owed by a due date. A monthly expense expands into
	// independent instances at creation; after that each instance stands alone.
	Expense struct {
		Transaction
		DueDate      Date       `json:"dueDate"`
		Paid         bool       `json:"paid"`
		Recurrence   Recurrence `json:"recurrence"`
		AlarmOffsets []int      `json:"alarmOffsets,omitempty"`
	}

	// User is the single local profile.
	User struct {
		Username string `json:"username"`
	}
)

// DefaultUsername is the placeholder profile name before the user picks one.
const DefaultUsername = "Usuário"

var (
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyCategory     = errors.New("empty category")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidRecurrence = errors.New("invalid recurrence")
	ErrInvalidAlarm      = errors.New("invalid alarm offset")
)

func (r Recurrence) IsValid() bool {
	switch r {
	case Once, Monthly:
		return true
	default:
		return false
	}
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON encodes the date as an ISO calendar date string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// UnmarshalJSON accepts an ISO calendar date string. Empty strings decode to
// the zero date so documents with missing fields still load.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// SameMonth reports whether the date falls in the given calendar year+month.
func (d Date) SameMonth(year, month int) bool {
	return d.Year() == year && int(d.Month()) == month
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) validateCommon() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return t.Amount.Validate()
}

func (g Income) Validate() error {
	if err := g.validateCommon(); err != nil {
		return err
	}
	return g.Date.Validate()
}

func (e Expense) Validate() error {
	if err := e.validateCommon(); err != nil {
		return err
	}
	if err := e.DueDate.Validate(); err != nil {
		return err
	}
	if !e.Recurrence.IsValid() {
		return ErrInvalidRecurrence
	}
	for _, off := range e.AlarmOffsets {
		if off < 0 {
			return ErrInvalidAlarm
		}
	}
	return nil
}

// NewID derives an entity id from its creation instant.
func NewID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// SeriesID derives the id of the i-th instance of an expanded monthly series.
// All instances share the creation timestamp of the submission.
func SeriesID(t time.Time, i int) string {
	return fmt.Sprintf("%d-%d", t.UnixMilli(), i)
}
