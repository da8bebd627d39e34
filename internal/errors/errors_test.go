package errors

import (
	stderrors "errors"
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
			err:      stderrors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "wrapped sentinel",
			err:      fmt.Errorf("habit 7: %w", ErrNotFound),
			expected: "Error: habit 7: not found",
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
	got := Formatf("failed to load %s", "habit")
	if got != "Error: failed to load habit" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestTransient(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}

	cause := stderrors.New("database is locked")
	err := Transient(cause)
	if !Is(err, ErrTransient) {
		t.Error("expected wrapped error to match ErrTransient")
	}
	if !Is(err, cause) {
		t.Error("expected wrapped error to keep its cause")
	}
	if Is(cause, ErrTransient) {
		t.Error("plain error should not match ErrTransient")
	}
}
