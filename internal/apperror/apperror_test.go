package apperror

import (
	"context"
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("invocation", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("cmd", "cmd is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("bad credentials"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "ToolExecution wraps ErrToolExecution",
			err:       ToolExecution("boom", nil),
			target:    ErrToolExecution,
			wantMatch: true,
		},
		{
			name:      "ToolExecution keeps its cause",
			err:       ToolExecution("deadline", context.DeadlineExceeded),
			target:    context.DeadlineExceeded,
			wantMatch: true,
		},
		{
			name:      "ToolExecution does NOT match ErrValidation",
			err:       ToolExecution("boom", nil),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "NotFound does NOT match ErrToolExecution",
			err:       NotFound("tool", "ruby"),
			target:    ErrToolExecution,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("invocation", "abc123"),
			wantMessage: "invocation not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("code", "code must be a string"),
			wantMessage: "code must be a string",
		},
		{
			name:        "ToolExecution uses the diagnostic verbatim",
			err:         ToolExecution("ZeroDivisionError: division by zero\n", nil),
			wantMessage: "ZeroDivisionError: division by zero\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("invocation", "abc123")
	if unwrapped := err.Unwrap(); unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), ToolExecution("boom", nil))

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As() did not find *AppError")
	}
	if appErr.Message != "boom" {
		t.Errorf("Message = %q, want %q", appErr.Message, "boom")
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("cmd", "cmd is required")

	if err.Field != "cmd" {
		t.Errorf("Field = %q, want %q", err.Field, "cmd")
	}
}
