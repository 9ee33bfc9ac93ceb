package models

import (
	"sort"
	"strings"

	"github.com/julianstephens/topthree/internal/constants"
)

// TaskSlot is one of the three fixed daily task entries.
type TaskSlot struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// HasText reports whether the slot carries non-blank text.
func (s TaskSlot) HasText() bool {
	return strings.TrimSpace(s.Text) != ""
}

// DailyRecord holds the three slots for a single calendar day.
type DailyRecord struct {
	Date  string                       `json:"date"` // YYYY-MM-DD format
	Slots [constants.SlotCount]TaskSlot `json:"slots"`
}

// NewDailyRecord builds a record for the given day from the current slot texts.
func NewDailyRecord(date string, texts [constants.SlotCount]string) DailyRecord {
	rec := DailyRecord{Date: date}
	for i, text := range texts {
		rec.Slots[i].Text = text
	}
	return rec
}

// CompletedCount returns how many of the slots are checked off.
func (r DailyRecord) CompletedCount() int {
	n := 0
	for _, slot := range r.Slots {
		if slot.Completed {
			n++
		}
	}
	return n
}

// AllComplete returns true when every slot is completed.
func (r DailyRecord) AllComplete() bool {
	return r.CompletedCount() == constants.SlotCount
}

// Texts returns the slot texts in slot order.
func (r DailyRecord) Texts() [constants.SlotCount]string {
	var texts [constants.SlotCount]string
	for i, slot := range r.Slots {
		texts[i] = slot.Text
	}
	return texts
}

// History maps a date key to the record for that day.
type History map[string]DailyRecord

// SortedDates returns the date keys in ascending order.
func (h History) SortedDates() []string {
	dates := make([]string, 0, len(h))
	for date := range h {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Clone returns a shallow copy that can be mutated without touching h.
func (h History) Clone() History {
	out := make(History, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
