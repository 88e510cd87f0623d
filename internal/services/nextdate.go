package services

import (
	"fmt"
	"time"

	"troskovi/internal/core"
)

// NextDate advances a schedule cursor exactly one period. Monthly and yearly
// steps clamp to the last day of a shorter target month (Jan 31 -> Feb 28)
// instead of rolling over the way AddDate would. The time of day and location
// of the cursor are preserved.
func NextDate(from time.Time, freq core.Frequency) (time.Time, error) {
	switch freq {
	case core.Weekly:
		return from.AddDate(0, 0, 7), nil
	case core.Biweekly:
		return from.AddDate(0, 0, 14), nil
	case core.Monthly:
		return addMonthsClamped(from, 1), nil
	case core.Yearly:
		return addYearsClamped(from, 1), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidFrequency, freq)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	month += time.Month(months)
	for month > 12 {
		month -= 12
		year++
	}
	if max := daysIn(year, month); day > max {
		day = max
	}
	h, m, s := t.Clock()
	return time.Date(year, month, day, h, m, s, t.Nanosecond(), t.Location())
}

func addYearsClamped(t time.Time, years int) time.Time {
	year, month, day := t.Date()
	year += years
	if max := daysIn(year, month); day > max {
		day = max
	}
	h, m, s := t.Clock()
	return time.Date(year, month, day, h, m, s, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
