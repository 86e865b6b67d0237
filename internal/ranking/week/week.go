// internal/ranking/week/week.go
package week

import (
	"fmt"
	"time"
)

// Start returns Monday 00:00:00.000 of the week containing t, in t's
// location.
func Start(t time.Time) time.Time {
	// time.Weekday puts Sunday at 0; shift so Monday is 0.
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// End returns Sunday 23:59:59.999 of the week containing t.
func End(t time.Time) time.Time {
	return Start(t).AddDate(0, 0, 7).Add(-time.Millisecond)
}

// ID returns the deterministic week identifier for t, e.g. "2026-W05".
// Identifiers sort lexically in chronological order.
func ID(t time.Time) string {
	year, wk := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, wk)
}

// PreviousID returns the identifier of the week before the one containing t.
func PreviousID(t time.Time) string {
	return ID(Start(t).AddDate(0, 0, -7))
}

// PreviousStart returns the Monday of the week before the one containing t.
func PreviousStart(t time.Time) time.Time {
	return Start(t).AddDate(0, 0, -7)
}

// PreviousEnd returns the Sunday 23:59:59.999 of the week before the one
// containing t.
func PreviousEnd(t time.Time) time.Time {
	return Start(t).Add(-time.Millisecond)
}
