package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWindow reports a zero or inverted expansion window.
var ErrInvalidWindow = errors.New("invalid expansion window")

// Expand materializes the occurrences of a template that fall inside the
// inclusive [windowStart, windowEnd] window.
//
// Non-recurring templates always produce exactly one instance on their
// anchor date, even when that date lies outside the window; filtering
// those is the consumer's call. Recurring templates produce a base
// instance on the anchor date (RecurringInstance false, so consumers that
// aggregate by template identity can find the canonical record) plus one
// instance per occurrence inside the window, stepping from the anchor by
// the configured interval and never past the end date.
//
// Expansion is pure: no side effects, instances in ascending date order.
func Expand(t Template, windowStart, windowEnd Date) ([]Instance, error) {
	if t.Date.IsZero() {
		return nil, fmt.Errorf("template %d: %w", t.ID, ErrInvalidDate)
	}
	if windowStart.IsZero() || windowEnd.IsZero() || windowEnd.Before(windowStart.Time) {
		return nil, ErrInvalidWindow
	}

	if !t.Recurring {
		return []Instance{{Template: t, InstanceDate: t.Date}}, nil
	}

	out := []Instance{{Template: t, InstanceDate: t.Date}}

	limit := windowEnd.Time
	if !t.EndDate.IsEmpty() && t.EndDate.Before(limit) {
		limit = t.EndDate.Time
	}

	// Step count is always taken from the anchor so a clamped short month
	// (Jan 31 -> Feb 28) does not shift later occurrences (-> Mar 31).
	for step := 0; ; step++ {
		d, ok := occurrence(t.Date, t.Interval, step)
		if !ok {
			// Unknown interval: terminate expansion, no recurring instances.
			break
		}
		if d.After(limit) {
			break
		}
		if !d.Before(windowStart.Time) {
			out = append(out, Instance{
				Template:          t,
				InstanceDate:      Date{Time: d},
				RecurringInstance: true,
			})
		}
	}

	return out, nil
}

// occurrence returns the date of the step-th occurrence counted from the
// anchor. Reports false for an unknown interval.
func occurrence(anchor Date, every Interval, step int) (time.Time, bool) {
	switch every {
	case Daily:
		return anchor.AddDate(0, 0, step), true
	case Weekly:
		return anchor.AddDate(0, 0, 7*step), true
	case Monthly:
		return addMonthsClamped(anchor.Time, step), true
	case Yearly:
		return addMonthsClamped(anchor.Time, 12*step), true
	default:
		return time.Time{}, false
	}
}

// addMonthsClamped advances by whole calendar months, clamping the anchor
// day-of-month to the last day of shorter target months (anchor day 31 in
// February becomes Feb 28/29). Plain AddDate would roll over into March.
func addMonthsClamped(anchor time.Time, months int) time.Time {
	year, month, day := anchor.Date()
	total := int(month) - 1 + months
	year += total / 12
	month = time.Month(total%12 + 1)
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, anchor.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthWindow returns the inclusive first and last day of a calendar month,
// the window the calendar and summary views expand over.
func MonthWindow(year, month int) (Date, Date) {
	start := NewDate(year, month, 1)
	end := NewDate(year, month, daysIn(year, time.Month(month)))
	return start, end
}
