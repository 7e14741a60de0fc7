// Package timefmt renders human readable durations for the dashboard.
package timefmt

import (
	"fmt"
	"time"
)

const (
	day   = 24 * time.Hour
	month = 30 * day
	year  = 12 * month
)

// Relative describes how long ago t was, relative to now.
// Anything older than twelve 30-day months is printed as a date.
func Relative(now, t time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Second:
		return "just now"
	case diff < time.Minute:
		return fmt.Sprintf("%d seconds ago", int64(diff/time.Second))
	case diff < time.Hour:
		return fmt.Sprintf("%d minute(s) ago", int64(diff/time.Minute))
	case diff < day:
		return fmt.Sprintf("%d hour(s) ago", int64(diff/time.Hour))
	case diff < month:
		return fmt.Sprintf("%d day(s) ago", int64(diff/day))
	case diff < year:
		return fmt.Sprintf("%d month(s) ago", int64(diff/month))
	}

	return t.Format("Jan 2, 2006")
}

// Remaining describes the time left until finish, using the two largest units.
// Past deadlines produce a negative second count.
func Remaining(now, finish time.Time) string {
	seconds := floorDiv(finish.Sub(now).Milliseconds(), 1000)
	minutes := floorDiv(seconds, 60)
	hours := floorDiv(minutes, 60)
	days := floorDiv(hours, 24)

	switch {
	case days > 0:
		return fmt.Sprintf("%d days, %d hours", days, hours%24)
	case hours > 0:
		return fmt.Sprintf("%d hours, %d minutes", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%d minutes", minutes)
	}

	return fmt.Sprintf("%d seconds", seconds)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
