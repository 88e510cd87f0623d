package main

import "time"

// nextRunAfter returns the next wall-clock occurrence of hour:00 strictly
// after now, in now's location.
func nextRunAfter(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
