package api_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/topthree/internal/api"
	"github.com/julianstephens/topthree/internal/models"
	"github.com/julianstephens/topthree/internal/remote"
	"github.com/julianstephens/topthree/internal/storage"
	"github.com/julianstephens/topthree/internal/today"
)

// TestClientAgainstServer drives two devices for the same user through the
// real client and server.
func TestClientAgainstServer(t *testing.T) {
	srv := httptest.NewServer(api.NewServer(storage.NewMemoryStore(), map[string]string{"tok": "alice"}, nil))
	t.Cleanup(srv.Close)

	now := func() time.Time { return time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC) }
	newDevice := func() *today.Controller {
		client, err := remote.NewClient(srv.URL, "tok")
		require.NoError(t, err)
		c := today.New(
			storage.NewDailyRecordStore(storage.NewMemoryStore(), nil),
			today.WithRemote(client),
			today.WithClock(now),
			today.WithLocation(time.UTC),
		)
		c.Initialize(context.Background())
		t.Cleanup(c.Close)
		return c
	}

	laptop := newDevice()
	for i, text := range []string{"write", "run", "read"} {
		require.NoError(t, laptop.SetSlotText(i, text))
		laptop.Close()
		require.NoError(t, laptop.ToggleSlot(i))
		// Background pushes race; wait so the server sees them in order.
		laptop.Close()
	}
	require.Equal(t, models.DayAllThreeComplete, laptop.State())

	phone := newDevice()
	slots := phone.Slots()
	require.Equal(t, "run", slots[1].Text)
	require.True(t, slots[2].Completed)
	require.Equal(t, 1, phone.Stats().Streak)

	outcome, err := phone.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, today.Submitted, outcome)

	outcome, err = laptop.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, today.AlreadySubmitted, outcome)
	require.Equal(t, models.DaySubmitted, laptop.State())
}

func completeDays(dates ...string) models.History {
	h := models.History{}
	for _, d := range dates {
		rec := models.NewDailyRecord(d, [3]string{"a", "b", "c"})
		for i := range rec.Slots {
			rec.Slots[i].Completed = true
		}
		h[d] = rec
	}
	return h
}

// TestLoginKeepsLocalStreak starts a device local-only over existing history,
// then logs it in to an account with no server history.
func TestLoginKeepsLocalStreak(t *testing.T) {
	kv := storage.NewMemoryStore()
	records := storage.NewDailyRecordStore(kv, nil)
	require.NoError(t, records.SaveHistory(completeDays("2024-01-13", "2024-01-14", "2024-01-15")))
	require.NoError(t, records.SaveTodayTexts([3]string{"a", "b", "c"}))

	now := func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }
	opts := []today.Option{today.WithClock(now), today.WithLocation(time.UTC)}

	local := today.New(records, opts...)
	local.Initialize(context.Background())
	before := local.Stats()
	local.Close()
	require.Equal(t, models.DerivedStats{Streak: 3, TotalCompletions: 9, HeatLevel: 3, MomentumHours: 60}, before)

	serverKV := storage.NewMemoryStore()
	srv := httptest.NewServer(api.NewServer(serverKV, map[string]string{"tok": "alice"}, nil))
	t.Cleanup(srv.Close)
	client, err := remote.NewClient(srv.URL, "tok")
	require.NoError(t, err)

	ctx := context.Background()
	stats, err := client.FetchStats(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Nil(t, stats, "empty server history must not report zero stats")

	authed := today.New(records, append(opts, today.WithRemote(client))...)
	authed.Initialize(ctx)
	t.Cleanup(authed.Close)
	require.Equal(t, before, authed.Stats())

	// The local days now live on the server too.
	for _, d := range []string{"2024-01-13", "2024-01-14", "2024-01-15"} {
		rec, err := client.FetchToday(ctx, d)
		require.NoError(t, err)
		require.NotNil(t, rec, d)
		require.True(t, rec.AllComplete(), d)
	}
	stats, err = client.FetchStats(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Equal(t, &models.Stats{Streak: 3, TotalCompletions: 9}, stats)

	// A second device for the same account sees the carried-over streak.
	phone := today.New(storage.NewDailyRecordStore(storage.NewMemoryStore(), nil), append(opts, today.WithRemote(client))...)
	phone.Initialize(ctx)
	t.Cleanup(phone.Close)
	require.Equal(t, 3, phone.Stats().Streak)
}

func TestLoginWithEmptyHistoryStaysLocal(t *testing.T) {
	srv := httptest.NewServer(api.NewServer(storage.NewMemoryStore(), map[string]string{"tok": "alice"}, nil))
	t.Cleanup(srv.Close)
	client, err := remote.NewClient(srv.URL, "tok")
	require.NoError(t, err)

	now := func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }
	c := today.New(
		storage.NewDailyRecordStore(storage.NewMemoryStore(), nil),
		today.WithRemote(client),
		today.WithClock(now),
		today.WithLocation(time.UTC),
	)
	c.Initialize(context.Background())
	t.Cleanup(c.Close)

	require.Equal(t, models.DerivedStats{}, c.Stats())
	require.Equal(t, models.DayNotStarted, c.State())
}
