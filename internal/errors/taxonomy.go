package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageCorruption is reported when persisted data cannot be decoded.
	// Storage absorbs it and falls back to empty values.
	ErrStorageCorruption = errors.New("stored data is corrupted")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrSync is returned when a remote call fails or answers with an unexpected status.
	ErrSync = errors.New("remote sync failed")

	// ErrSubmissionConflict is returned when a day was already submitted.
	ErrSubmissionConflict = errors.New("already submitted")

	// ErrSubmissionFailure is returned when a submit could not be confirmed.
	ErrSubmissionFailure = errors.New("submission failed")

	// ErrSlotIndex is returned for a slot index outside 0..2.
	ErrSlotIndex = errors.New("slot index out of range")
)

// ValidationError is a recoverable error tied to a single slot.
type ValidationError struct {
	Slot    int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("slot %d: %s", e.Slot+1, e.Message)
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
