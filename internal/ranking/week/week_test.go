// internal/ranking/week/week_test.go
package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_AlwaysMonday(t *testing.T) {
	// One of each weekday.
	for d := 0; d < 7; d++ {
		ts := time.Date(2026, 8, 24+d, 13, 45, 12, 0, time.UTC)
		start := Start(ts)
		assert.Equal(t, time.Monday, start.Weekday(), "start for %s", ts)
		assert.Equal(t, 0, start.Hour())
		assert.Equal(t, 0, start.Minute())
		assert.Equal(t, 0, start.Second())
		assert.Equal(t, 0, start.Nanosecond())
	}
}

func TestStartEnd_BoundsContainDate(t *testing.T) {
	dates := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),   // Thursday, year boundary
		time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC),
		time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), // Monday
		time.Date(2026, 9, 6, 23, 59, 59, 0, time.UTC), // Sunday
		time.Date(2024, 2, 29, 6, 30, 0, 0, time.UTC), // leap day
	}
	for _, d := range dates {
		start, end := Start(d), End(d)
		assert.False(t, d.Before(start), "weekStart(%s) must be <= date", d)
		assert.False(t, d.After(end), "weekEnd(%s) must be >= date", d)
		assert.Equal(t, 6*24*time.Hour+23*time.Hour+59*time.Minute+59*time.Second+999*time.Millisecond,
			end.Sub(start))
	}
}

func TestID_SortableAndDeterministic(t *testing.T) {
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 9, 6, 23, 59, 59, 0, time.UTC)
	require.Equal(t, ID(monday), ID(sunday), "same week must share one id")

	// Lexical order must match chronological order across a year boundary.
	var prev string
	cur := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		id := ID(cur)
		if prev != "" {
			assert.Less(t, prev, id)
		}
		prev = id
		cur = cur.AddDate(0, 0, 7)
	}
}

func TestID_ISOYearBoundary(t *testing.T) {
	// 2026-01-01 is a Thursday and belongs to ISO week 1 of 2026.
	assert.Equal(t, "2026-W01", ID(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	// 2027-01-01 is a Friday, still ISO week 53 of 2026.
	assert.Equal(t, "2026-W53", ID(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPreviousHelpers(t *testing.T) {
	d := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC) // Wednesday
	require.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), PreviousStart(d))
	require.Equal(t, time.Date(2026, 8, 30, 23, 59, 59, int(999*time.Millisecond), time.UTC), PreviousEnd(d))
	assert.Equal(t, ID(PreviousStart(d)), PreviousID(d))
	assert.Less(t, PreviousID(d), ID(d))
}
