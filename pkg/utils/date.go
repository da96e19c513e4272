package utils

import (
	"time"
)

// SameCalendarDay reports whether a and b fall on the same calendar day in
// local time.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// FormatLastUpdated renders a freshness timestamp for display.
func FormatLastUpdated(t time.Time) string {
	return t.Local().Format("Jan 2, 2006 15:04")
}
