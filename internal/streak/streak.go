// Package streak derives streak and completion totals from the daily history.
package streak

import (
	"time"

	"github.com/julianstephens/topthree/internal/models"
	"github.com/julianstephens/topthree/internal/utils"
)

// ComputeStats returns the current streak and the lifetime completion count.
//
// The streak walks backward from today's date key one calendar day at a time
// and stops at the first day that is absent or not fully complete. An
// incomplete today therefore means a streak of 0, whatever yesterday holds.
func ComputeStats(history models.History, today time.Time) models.Stats {
	var stats models.Stats

	for _, rec := range history {
		stats.TotalCompletions += rec.CompletedCount()
	}

	day := utils.StartOfDay(today)
	for {
		rec, ok := history[utils.DateKey(day)]
		if !ok || !rec.AllComplete() {
			break
		}
		stats.Streak++
		day = utils.AddDays(day, -1)
	}

	return stats
}

// StreakStart returns local midnight of the first day of a streak that ends today.
// A zero streak starts today.
func StreakStart(today time.Time, streak int) time.Time {
	if streak <= 0 {
		return utils.StartOfDay(today)
	}
	return utils.AddDays(today, -(streak - 1))
}

// MomentumHours is the number of whole hours since the current streak began.
func MomentumHours(now time.Time, streak int) int {
	if streak <= 0 {
		return 0
	}
	elapsed := now.Sub(StreakStart(now, streak))
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / time.Hour)
}
