// Package remote is the sync boundary between the local day state and the
// topthree sync server. Every call carries the client's local date key so both
// sides bucket days the same way.
package remote

import (
	"context"

	"github.com/julianstephens/topthree/internal/models"
)

// SubmitResult is the outcome of a successful SubmitToday call.
type SubmitResult int

const (
	SubmitAccepted SubmitResult = iota
	SubmitAlreadySubmitted
)

func (r SubmitResult) String() string {
	switch r {
	case SubmitAccepted:
		return "accepted"
	case SubmitAlreadySubmitted:
		return "already submitted"
	default:
		return "unknown"
	}
}

// Adapter is the remote store used by authenticated sessions.
type Adapter interface {
	// FetchToday returns nil, nil when the server holds no record for date.
	FetchToday(ctx context.Context, date string) (*models.DailyRecord, error)
	PushToday(ctx context.Context, rec models.DailyRecord) error
	// FetchStats returns nil, nil when the server has no stats to offer.
	FetchStats(ctx context.Context, date string) (*models.Stats, error)
	SubmitToday(ctx context.Context, date string) (SubmitResult, error)
}
