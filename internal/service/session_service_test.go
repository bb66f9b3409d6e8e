package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"focusflow/internal/model"
)

func session(start time.Time, actualSeconds int, completed bool) model.Session {
	return model.Session{
		StartTime:      start,
		ActualDuration: actualSeconds,
		IsCompleted:    completed,
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := computeStats(nil, time.Now())
	assert.Zero(t, stats.Today)
	assert.Zero(t, stats.Week)
	assert.Zero(t, stats.FocusTime)
	assert.Zero(t, stats.CompletionRate)
}

func TestComputeStatsWindows(t *testing.T) {
	now := time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

	sessions := []model.Session{
		// Today, completed, 1.5h.
		session(now.Add(-2*time.Hour), 5400, true),
		// Earlier today, aborted.
		session(time.Date(2026, time.March, 10, 0, 30, 0, 0, time.UTC), 600, false),
		// Yesterday: in the week but not today.
		session(now.AddDate(0, 0, -1), 3600, true),
		// Eight days ago: outside the week entirely.
		session(now.AddDate(0, 0, -8), 7200, true),
	}

	stats := computeStats(sessions, now)
	assert.Equal(t, 2, stats.Today)
	assert.Equal(t, 3, stats.Week)
	// 5400 + 600 + 3600 = 9600s = 2.666...h rounded to one decimal.
	assert.Equal(t, 2.7, stats.FocusTime)
	// 3 of 4 completed.
	assert.Equal(t, 75, stats.CompletionRate)
}

func TestComputeStatsCompletionRateRounds(t *testing.T) {
	now := time.Now()
	sessions := []model.Session{
		session(now, 0, true),
		session(now, 0, true),
		session(now, 0, false),
	}
	// 2/3 rounds to 67.
	assert.Equal(t, 67, computeStats(sessions, now).CompletionRate)
}
