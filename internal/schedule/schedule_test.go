package schedule

import (
	"testing"
	"time"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestIsValidDate(t *testing.T) {
	valid := []string{
		"2026-03-15T12:00:00Z",
		"2026-03-15T12:00:00+01:00",
		"2026-03-15T12:00:00",
		"2026-03-15 12:00:00",
		"2026-03-15",
	}
	for _, s := range valid {
		if !IsValidDate(s) {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "not a date", "2026-13-45", "15/03/2026"}
	for _, s := range invalid {
		if IsValidDate(s) {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestWindowOpen(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"both absent", "", "", true},
		{"inside window", "2026-03-01", "2026-03-31", true},
		{"before start", "2026-04-01", "", false},
		{"after end", "", "2026-03-01", false},
		{"start only, passed", "2026-03-01", "", true},
		{"end only, not reached", "", "2026-03-31", true},
		{"invalid start is open-ended", "garbage", "2026-03-31", true},
		{"invalid end is open-ended", "2026-03-01", "garbage", true},
		{"both invalid", "garbage", "more garbage", true},
	}

	for _, tt := range tests {
		if got := WindowOpen(tt.start, tt.end, now); got != tt.want {
			t.Errorf("%s: WindowOpen(%q, %q) = %v, want %v", tt.name, tt.start, tt.end, got, tt.want)
		}
	}
}

func TestWindowStatus(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       Status
	}{
		{"future start, no end", "2026-04-01", "", StatusUpcoming},
		{"both absent", "", "", StatusOpen},
		{"past end", "", "2026-03-01", StatusClosed},
		{"inside window", "2026-03-01", "2026-03-31", StatusOpen},
		{"future start beats future end", "2026-04-01", "2026-05-01", StatusUpcoming},
	}

	for _, tt := range tests {
		if got := WindowStatus(tt.start, tt.end, now); got != tt.want {
			t.Errorf("%s: WindowStatus(%q, %q) = %q, want %q", tt.name, tt.start, tt.end, got, tt.want)
		}
	}
}

func TestDeadlinePassed(t *testing.T) {
	if DeadlinePassed("", now) {
		t.Error("absent deadline should never pass")
	}
	if DeadlinePassed("garbage", now) {
		t.Error("invalid deadline should never pass")
	}
	if !DeadlinePassed("2026-03-01", now) {
		t.Error("past deadline should have passed")
	}
	if DeadlinePassed("2026-04-01", now) {
		t.Error("future deadline should not have passed")
	}
}
