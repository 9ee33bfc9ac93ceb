// Package heat turns streak history into the 0-5 momentum indicator.
//
// While a streak is alive the level tracks it. Once it breaks, only a streak
// that reached the maximum level cools down one step per day; anything
// shorter drops straight to zero.
package heat

import (
	"time"

	"github.com/julianstephens/topthree/internal/constants"
	"github.com/julianstephens/topthree/internal/models"
	"github.com/julianstephens/topthree/internal/streak"
	"github.com/julianstephens/topthree/internal/utils"
)

const (
	MaxLevel     = constants.MaxHeatLevel
	LookbackDays = constants.HeatLookbackDays
)

// ComputeHeatLevel returns the heat level for today in [0, MaxLevel].
func ComputeHeatLevel(history models.History, today time.Time, currentStreak int) int {
	if currentStreak > 0 {
		return min(currentStreak, MaxLevel)
	}

	day := utils.StartOfDay(today)

	peakOffset := 0
	for offset := 1; offset <= LookbackDays; offset++ {
		if completeOn(history, utils.AddDays(day, -offset)) {
			peakOffset = offset
			break
		}
	}
	if peakOffset == 0 {
		return 0
	}

	// Run of completed days ending at the peak, bounded by the lookback window.
	run := 0
	for offset := peakOffset; offset <= LookbackDays; offset++ {
		if !completeOn(history, utils.AddDays(day, -offset)) {
			break
		}
		run++
	}

	if run < MaxLevel {
		return 0
	}
	return max(0, MaxLevel-peakOffset)
}

// Level computes today's streak and heat level in one step.
func Level(history models.History, today time.Time) int {
	return ComputeHeatLevel(history, today, streak.ComputeStats(history, today).Streak)
}

// DayHeat is one cell of the heat timeline.
type DayHeat struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Level     int    `json:"level"`
}

// Full reports whether all three slots were done that day.
func (d DayHeat) Full() bool {
	return d.Completed == constants.SlotCount
}

// Timeline returns the last days days ending today, oldest first, each with the
// heat level as it would have been computed on that day.
func Timeline(history models.History, today time.Time, days int) []DayHeat {
	if days <= 0 {
		return nil
	}

	out := make([]DayHeat, 0, days)
	start := utils.AddDays(today, -(days - 1))
	for i := 0; i < days; i++ {
		day := utils.AddDays(start, i)
		key := utils.DateKey(day)
		out = append(out, DayHeat{
			Date:      key,
			Completed: history[key].CompletedCount(),
			Level:     Level(history, day),
		})
	}
	return out
}

func completeOn(history models.History, day time.Time) bool {
	rec, ok := history[utils.DateKey(day)]
	return ok && rec.AllComplete()
}
