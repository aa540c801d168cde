// Package billing turns a credit card's closing and due days into billing cycles,
// assigns entries to cycles and classifies the resulting invoices.
//
// Everything here is pure: the reference date is always passed in by the caller.
package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/tinoosan/finledger/internal/errs"
)

// Cycle is one billing period of a card: Start..End inclusive, then payable until Due.
type Cycle struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
	Due   civil.Date `json:"due"`
}

// Key identifies the cycle by its closing month, formatted yyyy-MM.
// Every month has exactly one closing date, so keys never collide.
func (c Cycle) Key() string {
	return fmt.Sprintf("%04d-%02d", c.End.Year, int(c.End.Month))
}

// Contains reports whether d falls inside Start..End (both ends inclusive).
func (c Cycle) Contains(d civil.Date) bool {
	return !d.Before(c.Start) && !d.After(c.End)
}

// Schedule is a card's billing configuration.
type Schedule struct {
	ClosingDay int
	DueDay     int
}

// NewSchedule validates the days and returns a Schedule.
func NewSchedule(closingDay, dueDay int) (Schedule, error) {
	s := Schedule{ClosingDay: closingDay, DueDay: dueDay}
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// Validate checks that both days are within 1..31.
func (s Schedule) Validate() error {
	if s.ClosingDay < 1 || s.ClosingDay > 31 {
		return fmt.Errorf("%w: closing day %d out of range 1..31", errs.ErrInvalidConfiguration, s.ClosingDay)
	}
	if s.DueDay < 1 || s.DueDay > 31 {
		return fmt.Errorf("%w: due day %d out of range 1..31", errs.ErrInvalidConfiguration, s.DueDay)
	}
	return nil
}

// ComputeCycle returns the most recent cycle whose closing date is strictly before ref.
// When ref's day is past the (clamped) closing day the cycle closed this month,
// otherwise the cycle closing this month is still accumulating and the previous one is returned.
func ComputeCycle(closingDay, dueDay int, ref civil.Date) (Cycle, error) {
	s, err := NewSchedule(closingDay, dueDay)
	if err != nil {
		return Cycle{}, err
	}
	return s.Current(ref), nil
}

// Current returns the most recently closed cycle relative to ref. See ComputeCycle.
func (s Schedule) Current(ref civil.Date) Cycle {
	if ref.Day > clampDay(ref.Year, ref.Month, s.ClosingDay) {
		return s.EndingIn(ref.Year, ref.Month)
	}
	y, m := addMonths(ref.Year, ref.Month, -1)
	return s.EndingIn(y, m)
}

// Containing returns the cycle whose Start..End range includes d.
func (s Schedule) Containing(d civil.Date) Cycle {
	if d.Day <= clampDay(d.Year, d.Month, s.ClosingDay) {
		return s.EndingIn(d.Year, d.Month)
	}
	y, m := addMonths(d.Year, d.Month, 1)
	return s.EndingIn(y, m)
}

// EndingIn builds the cycle that closes in the given month.
//
// The closing and due days are clamped to the month's last day. The due date lands in the
// closing month when DueDay > ClosingDay and in the following month otherwise; if clamping
// pushes a same-month due date onto or before the closing date, it moves one month forward.
func (s Schedule) EndingIn(year int, month time.Month) Cycle {
	end := clampDate(year, month, s.ClosingDay)
	py, pm := addMonths(year, month, -1)
	start := clampDate(py, pm, s.ClosingDay).AddDays(1)

	dy, dm := year, month
	if s.DueDay <= s.ClosingDay {
		dy, dm = addMonths(year, month, 1)
	}
	due := clampDate(dy, dm, s.DueDay)
	if !due.After(end) {
		dy, dm = addMonths(dy, dm, 1)
		due = clampDate(dy, dm, s.DueDay)
	}
	return Cycle{Start: start, End: end, Due: due}
}

// Next returns the cycle immediately after c.
func (s Schedule) Next(c Cycle) Cycle {
	y, m := addMonths(c.End.Year, c.End.Month, 1)
	return s.EndingIn(y, m)
}

// Prev returns the cycle immediately before c.
func (s Schedule) Prev(c Cycle) Cycle {
	y, m := addMonths(c.End.Year, c.End.Month, -1)
	return s.EndingIn(y, m)
}

// ForKey returns the cycle identified by a yyyy-MM period key.
func (s Schedule) ForKey(key string) (Cycle, error) {
	y, m, err := ParseKey(key)
	if err != nil {
		return Cycle{}, err
	}
	return s.EndingIn(y, m), nil
}

// ParseKey splits a yyyy-MM period key.
func ParseKey(key string) (int, time.Month, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("%w: period key %q must be yyyy-MM", errs.ErrInvalid, key)
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: period key %q: bad year", errs.ErrInvalid, key)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("%w: period key %q: bad month", errs.ErrInvalid, key)
	}
	return y, time.Month(m), nil
}

func addMonths(year int, month time.Month, n int) (int, time.Month) {
	idx := year*12 + int(month-1) + n
	return idx / 12, time.Month(idx%12 + 1)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clampDay(year int, month time.Month, day int) int {
	if n := daysIn(year, month); day > n {
		return n
	}
	return day
}

func clampDate(year int, month time.Month, day int) civil.Date {
	return civil.Date{Year: year, Month: month, Day: clampDay(year, month, day)}
}
