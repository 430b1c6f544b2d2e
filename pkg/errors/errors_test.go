package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, cause, "failed to encode")

	if err.Code != ErrCodeInternal {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInternal)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestMalformed(t *testing.T) {
	fragment := `["a", {w:}]`
	cause := errors.New("unexpected token")
	err := Malformed(fragment, cause, "invalid layout syntax")

	if err.Code != ErrCodeMalformedLayout {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMalformedLayout)
	}
	if err.Fragment != fragment {
		t.Errorf("Fragment = %q, want %q", err.Fragment, fragment)
	}

	// Fragment survives further wrapping
	wrapped := fmt.Errorf("parse: %w", err)
	if got := FragmentOf(wrapped); got != fragment {
		t.Errorf("FragmentOf() = %q, want %q", got, fragment)
	}
	if !Is(wrapped, ErrCodeMalformedLayout) {
		t.Error("Is(wrapped, MALFORMED_LAYOUT) = false, want true")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is(wrapped, cause) = false, want true")
	}
}

func TestFragmentOfPlainError(t *testing.T) {
	if got := FragmentOf(errors.New("plain")); got != "" {
		t.Errorf("FragmentOf(plain) = %q, want empty", got)
	}
	if got := FragmentOf(New(ErrCodeNoKeys, "no keys")); got != "" {
		t.Errorf("FragmentOf(NO_KEYS) = %q, want empty", got)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeNoKeys,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeInternal, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeInternal,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("bounds: %w", New(ErrCodeNoKeys, "no keys")),
			code:     ErrCodeNoKeys,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeMalformedLayout, "test"),
			expected: ErrCodeMalformedLayout,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
		{
			name:     "malformed keeps cause",
			err:      Malformed(`[{w:"wide"},"a"]`, errors.New(`field "w": not a number: "wide"`), "row %d token %d", 0, 0),
			expected: `row 0 token 0: field "w": not a number: "wide"`,
		},
		{
			name:     "malformed without cause",
			err:      Malformed(`{}`, nil, "layout must be an array of rows, got object"),
			expected: "layout must be an array of rows, got object",
		},
		{
			name:     "other codes hide cause",
			err:      Wrap(ErrCodeInternal, errors.New("disk full"), "write failed"),
			expected: "write failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}
