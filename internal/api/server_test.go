package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/topthree/internal/models"
	"github.com/julianstephens/topthree/internal/storage"
)

const (
	aliceToken = "alice-token"
	bobToken   = "bob-token"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.MemoryStore) {
	t.Helper()
	kv := storage.NewMemoryStore()
	tokens := map[string]string{aliceToken: "alice", bobToken: "bob"}
	srv := httptest.NewServer(NewServer(kv, tokens, nil))
	t.Cleanup(srv.Close)
	return srv, kv
}

func doRequest(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, "ok", string(body))
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/today?date=2024-01-15", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/v1/today?date=2024-01-15", "wrong", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTodayRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	url := srv.URL + "/api/v1/today?date=2024-01-15"

	resp := doRequest(t, http.MethodGet, url, aliceToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	rec := models.NewDailyRecord("2024-01-15", [3]string{"a", "b", "c"})
	rec.Slots[0].Completed = true
	resp = doRequest(t, http.MethodPut, url, aliceToken, rec)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, url, aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.DailyRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, rec, got)

	// Other users are isolated
	resp = doRequest(t, http.MethodGet, url, bobToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPutTodayValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		body   interface{}
		status int
	}{
		{
			name:   "invalid date",
			query:  "?date=15-01-2024",
			body:   models.DailyRecord{Date: "15-01-2024"},
			status: http.StatusBadRequest,
		},
		{
			name:   "query and body disagree",
			query:  "?date=2024-01-15",
			body:   models.DailyRecord{Date: "2024-01-14"},
			status: http.StatusBadRequest,
		},
		{
			name:   "not a record",
			query:  "?date=2024-01-15",
			body:   []string{"a"},
			status: http.StatusBadRequest,
		},
		{
			name:  "completed slot whose text was cleared is accepted",
			query: "?date=2024-01-15",
			body: models.DailyRecord{
				Date:  "2024-01-15",
				Slots: [3]models.TaskSlot{{Text: "", Completed: true}},
			},
			status: http.StatusNoContent,
		},
		{
			name:   "date from body when query is absent",
			query:  "",
			body:   models.DailyRecord{Date: "2024-01-16"},
			status: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, http.MethodPut, srv.URL+"/api/v1/today"+tt.query, aliceToken, tt.body)
			require.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestGetTodayRejectsBadDate(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, q := range []string{"", "?date=", "?date=yesterday", "?date=2023-02-29"} {
		resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/today"+q, aliceToken, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "query %q", q)
	}
}

func TestStats(t *testing.T) {
	srv, kv := newTestServer(t)

	store := storage.NewDailyRecordStore(storage.Namespaced(kv, "user:alice:"), nil)
	history := models.History{}
	for _, d := range []string{"2024-01-14", "2024-01-15"} {
		rec := models.NewDailyRecord(d, [3]string{"a", "b", "c"})
		for i := range rec.Slots {
			rec.Slots[i].Completed = true
		}
		history[d] = rec
	}
	require.NoError(t, store.SaveHistory(history))

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/stats?date=2024-01-15", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats models.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	require.Equal(t, models.Stats{Streak: 2, TotalCompletions: 6}, stats)

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/v1/stats?date=2024-01-16", aliceToken, nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	require.Equal(t, 0, stats.Streak)
}

func TestStatsWithoutHistoryIsNoContent(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/stats?date=2024-01-15", bobToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSubmitConflict(t *testing.T) {
	srv, _ := newTestServer(t)
	url := srv.URL + "/api/v1/submit?date=2024-01-15"

	resp := doRequest(t, http.MethodPost, url, aliceToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var first models.SubmissionRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&first))
	require.True(t, first.Submitted)
	require.NotEmpty(t, first.ID)

	resp = doRequest(t, http.MethodPost, url, aliceToken, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var second models.SubmissionRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&second))
	require.Equal(t, first.ID, second.ID)

	// Bob's day is independent
	resp = doRequest(t, http.MethodPost, url, bobToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestStaticTokens(t *testing.T) {
	tokens := StaticTokens{"t1": "alice", "t2": ""}

	user, err := tokens.ResolveUser(context.Background(), "t1")
	require.NoError(t, err)
	require.Equal(t, "alice", user)

	_, err = tokens.ResolveUser(context.Background(), "t2")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = tokens.ResolveUser(context.Background(), "nope")
	require.ErrorIs(t, err, ErrUnauthorized)
}
