package utils

import (
	"testing"
	"time"
)

func TestSameCalendarDay(t *testing.T) {
	tests := []struct {
		name     string
		a        time.Time
		b        time.Time
		expected bool
	}{
		{
			name:     "same moment",
			a:        time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local),
			b:        time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local),
			expected: true,
		},
		{
			name:     "same day different hours",
			a:        time.Date(2024, 3, 15, 0, 1, 0, 0, time.Local),
			b:        time.Date(2024, 3, 15, 23, 59, 0, 0, time.Local),
			expected: true,
		},
		{
			name:     "consecutive days",
			a:        time.Date(2024, 3, 15, 23, 59, 0, 0, time.Local),
			b:        time.Date(2024, 3, 16, 0, 1, 0, 0, time.Local),
			expected: false,
		},
		{
			name:     "same day-of-month different month",
			a:        time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local),
			b:        time.Date(2024, 4, 15, 12, 0, 0, 0, time.Local),
			expected: false,
		},
		{
			name:     "same day-of-year different year",
			a:        time.Date(2023, 3, 15, 12, 0, 0, 0, time.Local),
			b:        time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameCalendarDay(tt.a, tt.b); got != tt.expected {
				t.Errorf("SameCalendarDay(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestFormatLastUpdated(t *testing.T) {
	ts := time.Date(2024, 3, 15, 9, 5, 0, 0, time.Local)
	got := FormatLastUpdated(ts)
	if got != "Mar 15, 2024 09:05" {
		t.Errorf("unexpected formatted date: %q", got)
	}
}
