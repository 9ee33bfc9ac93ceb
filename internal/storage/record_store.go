package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/topthree/internal/constants"
	cerrors "github.com/julianstephens/topthree/internal/errors"
	"github.com/julianstephens/topthree/internal/logger"
	"github.com/julianstephens/topthree/internal/models"
	"github.com/julianstephens/topthree/internal/validation"
)

// DailyRecordStore persists the history of daily records, the current slot
// texts and per-day submissions on top of any KV backend.
//
// Reads never fail: absent keys, backend read errors and undecodable values all
// come back as the documented default and are logged. Writes return their error
// so the caller can decide whether it matters.
type DailyRecordStore struct {
	kv  KV
	log *log.Logger
}

// NewDailyRecordStore wraps kv. A nil logger falls back to the global one.
func NewDailyRecordStore(kv KV, l *log.Logger) *DailyRecordStore {
	if l == nil {
		l = logger.With("component", "storage")
	}
	return &DailyRecordStore{kv: kv, log: l}
}

// LoadHistory returns every stored record keyed by date, or an empty history.
func (s *DailyRecordStore) LoadHistory() models.History {
	var h models.History
	if !s.read(constants.KeyHistory, &h) || h == nil {
		return models.History{}
	}

	normalized, dropped := validation.NormalizeHistory(h)
	if dropped > 0 {
		s.log.Warn("Dropped history entries with invalid dates", "count", dropped)
	}
	return normalized
}

// SaveHistory overwrites the stored history.
func (s *DailyRecordStore) SaveHistory(h models.History) error {
	if h == nil {
		h = models.History{}
	}
	return s.write(constants.KeyHistory, h)
}

// LoadTodayTexts returns the three current slot texts, defaulting to empty strings.
func (s *DailyRecordStore) LoadTodayTexts() [constants.SlotCount]string {
	var texts [constants.SlotCount]string

	var raw []string
	if !s.read(constants.KeyTodayTexts, &raw) {
		return texts
	}
	if len(raw) != constants.SlotCount {
		s.log.Warn("Ignoring stored slot texts with wrong length", "length", len(raw))
		return texts
	}
	copy(texts[:], raw)
	return texts
}

// SaveTodayTexts overwrites the stored slot texts.
func (s *DailyRecordStore) SaveTodayTexts(texts [constants.SlotCount]string) error {
	return s.write(constants.KeyTodayTexts, texts[:])
}

// LoadSubmission returns the submission for date, or nil if there is none.
func (s *DailyRecordStore) LoadSubmission(date string) *models.SubmissionRecord {
	var rec models.SubmissionRecord
	if !s.read(submissionKey(date), &rec) {
		return nil
	}
	if rec.Date != date || !rec.Submitted {
		s.log.Warn("Ignoring inconsistent submission record", "date", date, "stored_date", rec.Date)
		return nil
	}
	return &rec
}

// SaveSubmission stores rec under its date.
func (s *DailyRecordStore) SaveSubmission(rec models.SubmissionRecord) error {
	if rec.Date == "" {
		return fmt.Errorf("submission record has no date")
	}
	return s.write(submissionKey(rec.Date), rec)
}

// LoadSyncMark returns the last past date known to be on the sync server, or "".
func (s *DailyRecordStore) LoadSyncMark() string {
	var mark string
	if !s.read(constants.KeySyncMark, &mark) {
		return ""
	}
	return mark
}

// SaveSyncMark records date as the newest past day already on the server.
// An empty date makes the next authenticated start re-check every day.
func (s *DailyRecordStore) SaveSyncMark(date string) error {
	return s.write(constants.KeySyncMark, date)
}

func submissionKey(date string) string {
	return constants.KeySubmissionPrefix + date
}

// read decodes key into v and reports whether a usable value was found.
func (s *DailyRecordStore) read(key string, v interface{}) bool {
	raw, err := s.kv.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("Failed to read from storage", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.log.Warn("Ignoring undecodable stored value", "key", key, "error", fmt.Errorf("%w: %v", cerrors.ErrStorageCorruption, err))
		return false
	}
	return true
}

func (s *DailyRecordStore) write(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Set(key, string(raw)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
