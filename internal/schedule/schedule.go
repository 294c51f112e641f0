// Package schedule computes whether named time windows (registration period,
// discount deadline) are currently open. Invalid or absent boundaries impose
// no constraint; nothing here ever returns an error.
package schedule

import "time"

// Status describes a window relative to a point in time.
type Status string

const (
	StatusOpen     Status = "open"
	StatusUpcoming Status = "upcoming"
	StatusClosed   Status = "closed"
)

var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a timestamp string in any of the formats the camp API is
// known to emit. The second return value is false for empty or unparseable
// input.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsValidDate reports whether s parses to a usable timestamp.
func IsValidDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// WindowOpen reports whether now falls inside [start, end]. An absent or
// invalid boundary leaves that side open-ended.
func WindowOpen(start, end string, now time.Time) bool {
	if t, ok := ParseDate(start); ok && now.Before(t) {
		return false
	}
	if t, ok := ParseDate(end); ok && now.After(t) {
		return false
	}
	return true
}

// WindowStatus classifies now against the window: before a valid start is
// upcoming, after a valid end is closed, otherwise open. Both boundaries
// absent means unconditionally open.
func WindowStatus(start, end string, now time.Time) Status {
	if t, ok := ParseDate(start); ok && now.Before(t) {
		return StatusUpcoming
	}
	if t, ok := ParseDate(end); ok && now.After(t) {
		return StatusClosed
	}
	return StatusOpen
}

// DeadlinePassed reports whether a valid deadline lies strictly in the past.
// An absent or invalid deadline never passes.
func DeadlinePassed(deadline string, now time.Time) bool {
	t, ok := ParseDate(deadline)
	return ok && now.After(t)
}
