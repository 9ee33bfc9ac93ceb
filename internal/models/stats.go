package models

import "time"

// Stats is the pair of figures that can be derived locally or supplied by the server.
type Stats struct {
	Streak           int `json:"streak"`
	TotalCompletions int `json:"totalCompletions"`
}

// DerivedStats are the display values recomputed from history. They are never persisted.
type DerivedStats struct {
	Streak           int `json:"streak"`
	TotalCompletions int `json:"totalCompletions"`
	HeatLevel        int `json:"heatLevel"`
	MomentumHours    int `json:"momentumHours"`
}

// SubmissionRecord marks a day as finalized. At most one exists per date.
type SubmissionRecord struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"` // YYYY-MM-DD format
	Submitted   bool      `json:"submitted"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// DayState is the position of a day in its lifecycle.
type DayState int

const (
	DayNotStarted DayState = iota
	DayInProgress
	DayAllThreeComplete
	DaySubmitted
)

func (s DayState) String() string {
	switch s {
	case DayNotStarted:
		return "not started"
	case DayInProgress:
		return "in progress"
	case DayAllThreeComplete:
		return "all three complete"
	case DaySubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}
