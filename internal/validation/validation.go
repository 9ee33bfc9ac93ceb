package validation

import (
	"fmt"

	"github.com/julianstephens/topthree/internal/constants"
	cerrors "github.com/julianstephens/topthree/internal/errors"
	"github.com/julianstephens/topthree/internal/models"
	"github.com/julianstephens/topthree/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidDate          ConflictType = "invalid_date"
	ConflictDateMismatch         ConflictType = "date_mismatch"
	ConflictCompletedWithoutText ConflictType = "completed_without_text"
)

// Conflict represents a detected problem in a stored record
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string // YYYY-MM-DD format (if applicable)
	Slot        int    // -1 when the conflict is not about a single slot
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Blocking reports whether any conflict makes the record unusable.
// A completed slot without text is allowed: text may be cleared after completion.
func (vr *ValidationResult) Blocking() bool {
	for _, c := range vr.Conflicts {
		if c.Type != ConflictCompletedWithoutText {
			return true
		}
	}
	return false
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// CheckCompletion enforces the rule for marking a slot complete: the slot must
// carry non-blank text at the moment it is checked. Unchecking is always allowed.
func CheckCompletion(index int, slot models.TaskSlot) error {
	if index < 0 || index >= constants.SlotCount {
		return cerrors.ErrSlotIndex
	}
	if !slot.Completed && !slot.HasText() {
		return &cerrors.ValidationError{Slot: index, Message: constants.SlotTextRequiredMessage}
	}
	return nil
}

// ValidateRecord checks a single record, optionally against the key it is stored under.
func ValidateRecord(key string, rec models.DailyRecord) ValidationResult {
	var result ValidationResult

	if !utils.ValidateDateKey(rec.Date) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidDate,
			Description: fmt.Sprintf("record has invalid date %q (expected YYYY-MM-DD)", rec.Date),
			Date:        rec.Date,
			Slot:        -1,
		})
	}
	if key != "" && key != rec.Date {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDateMismatch,
			Description: fmt.Sprintf("record stored under %s carries date %q", key, rec.Date),
			Date:        key,
			Slot:        -1,
		})
	}
	for i, slot := range rec.Slots {
		if slot.Completed && !slot.HasText() {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictCompletedWithoutText,
				Description: fmt.Sprintf("%s: slot %d is completed but has no text", rec.Date, i+1),
				Date:        rec.Date,
				Slot:        i,
			})
		}
	}

	return result
}

// ValidateHistory checks every record in h, in date order.
func ValidateHistory(h models.History) ValidationResult {
	var result ValidationResult
	for _, key := range h.SortedDates() {
		r := ValidateRecord(key, h[key])
		result.Conflicts = append(result.Conflicts, r.Conflicts...)
	}
	return result
}

// NormalizeHistory drops entries whose key is not a valid date and makes each
// record's date agree with its key. The input is not modified.
func NormalizeHistory(h models.History) (models.History, int) {
	out := make(models.History, len(h))
	dropped := 0
	for key, rec := range h {
		if !utils.ValidateDateKey(key) {
			dropped++
			continue
		}
		rec.Date = key
		out[key] = rec
	}
	return out, dropped
}
