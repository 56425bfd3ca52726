package models

import (
	"fmt"
	"time"
)

type windowKind int

const (
	windowAllTime windowKind = iota
	windowToday
	windowTrailing
)

// Window selects the time range a report aggregates over.
// The zero value is AllTime.
type Window struct {
	kind windowKind
	days int
}

// Today covers the current local calendar day.
func Today() Window {
	return Window{kind: windowToday}
}

// AllTime covers every order ever committed.
func AllTime() Window {
	return Window{kind: windowAllTime}
}

// TrailingDays covers the last n local calendar days, today included.
// n below 1 collapses to Today.
func TrailingDays(n int) Window {
	if n < 1 {
		return Today()
	}
	return Window{kind: windowTrailing, days: n}
}

// WindowFromDays decodes the integer selector used by clients:
// 0 is today, negative is all time, n > 0 is the trailing n days.
// The trailing span counts today as its first day, so days=1 covers the
// same range as days=0 and days=7 is today plus the six days before it.
// Legacy clients that sent days=N to mean "today plus N prior days" see
// one day less here.
func WindowFromDays(days int) Window {
	switch {
	case days < 0:
		return AllTime()
	case days == 0:
		return Today()
	default:
		return TrailingDays(days)
	}
}

// Days encodes the window back into the integer selector.
func (w Window) Days() int {
	switch w.kind {
	case windowToday:
		return 0
	case windowTrailing:
		return w.days
	default:
		return -1
	}
}

func (w Window) IsAllTime() bool {
	return w.kind == windowAllTime
}

// Since returns the inclusive lower bound of the window relative to now,
// using calendar days in loc. ok is false for AllTime.
func (w Window) Since(now time.Time, loc *time.Location) (since time.Time, ok bool) {
	if w.kind == windowAllTime {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if w.kind == windowTrailing {
		start = start.AddDate(0, 0, -(w.days - 1))
	}
	return start, true
}

func (w Window) String() string {
	switch w.kind {
	case windowToday:
		return "today"
	case windowTrailing:
		return fmt.Sprintf("last %d days", w.days)
	default:
		return "all time"
	}
}
