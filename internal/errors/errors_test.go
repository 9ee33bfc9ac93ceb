package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "retryable error",
			err:      fmt.Errorf("%w: connection refused", ErrSubmissionFailure),
			expected: "Error: submission failed: connection refused (you can retry)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("connection to %s:%d failed", "localhost", 8787)
	if got != "Error: connection to localhost:8787 failed" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestValidationError(t *testing.T) {
	var err error = &ValidationError{Slot: 1, Message: "task text required before marking complete"}

	if !errors.Is(err, ErrValidation) {
		t.Error("errors.Is(ValidationError, ErrValidation) = false, want true")
	}
	if errors.Is(err, ErrSync) {
		t.Error("errors.Is(ValidationError, ErrSync) = true, want false")
	}
	if got := err.Error(); got != "slot 2: task text required before marking complete" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := fmt.Errorf("toggle: %w", err)
	var ve *ValidationError
	if !errors.As(wrapped, &ve) || ve.Slot != 1 {
		t.Errorf("errors.As() did not recover slot, got %+v", ve)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"submission failure", fmt.Errorf("submit: %w", ErrSubmissionFailure), true},
		{"sync failure", ErrSync, true},
		{"conflict", ErrSubmissionConflict, false},
		{"validation", &ValidationError{Slot: 0, Message: "x"}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}
