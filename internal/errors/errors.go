package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitforge/internal/logger"
)

var (
	// ErrNotFound is returned by stores when a habit, completion or journal entry does not exist
	ErrNotFound = stderrors.New("not found")
	// ErrInvalidInput wraps validation failures on user-supplied fields
	ErrInvalidInput = stderrors.New("invalid input")
	// ErrInvalidReminderTime is returned for reminder times that are not HH:MM
	ErrInvalidReminderTime = stderrors.New("invalid reminder time")
	// ErrInvalidDate is returned for dates that are not YYYY-MM-DD
	ErrInvalidDate = stderrors.New("invalid date")
	// ErrTransient marks failures that a periodic job should retry
	ErrTransient = stderrors.New("transient failure")
)

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Transient wraps err so that Is(err, ErrTransient) holds
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
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

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
