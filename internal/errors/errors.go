package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/topthree/internal/logger"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	if IsRetryable(err) {
		return fmt.Sprintf("Error: %v (you can retry)", err)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// IsRetryable reports whether err is a failure the user can simply try again.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSubmissionFailure) || errors.Is(err, ErrSync)
}
