// Package bucket assigns tasks to human-readable relative date groups.
package bucket

import (
	"fmt"
	"time"
)

const (
	// Today is the label for tasks created on the reference date.
	Today = "Today"

	// Yesterday is the label for tasks created one day before the reference date.
	Yesterday = "Yesterday"

	// Tomorrow is the label for tasks dated one day after the reference date.
	Tomorrow = "Tomorrow"

	// window is the widest day distance that still gets a relative label.
	window = 6
)

// Func maps a creation time and a reference date to a group label.
type Func func(createdAt, today time.Time) string

// Label returns the group label for createdAt relative to today.
// Both arguments are reduced to their UTC calendar date; time of day never
// affects the result.
//
//	 0       Today
//	 1       Yesterday
//	-1       Tomorrow
//	 2..6    "N days ago"
//	-6..-2   "In N days"
//	 other   "2 January 2006"
func Label(createdAt, today time.Time) string {
	created := Date(createdAt)
	diff := DaysBetween(created, Date(today))

	switch {
	case diff == 0:
		return Today
	case diff == 1:
		return Yesterday
	case diff == -1:
		return Tomorrow
	case diff >= 2 && diff <= window:
		return fmt.Sprintf("%d days ago", diff)
	case diff <= -2 && diff >= -window:
		return fmt.Sprintf("In %d days", -diff)
	default:
		return fmt.Sprintf("%d %s %d", created.Day(), created.Month(), created.Year())
	}
}

// Date truncates t to midnight of its UTC calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from 'from' to 'to'.
// Both must already be UTC midnights (see Date).
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
