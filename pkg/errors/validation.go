package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLayoutBytes is the largest layout text accepted by ValidateLayoutText.
// Real keyboards stay far below this; the limit only guards the HTTP API.
const MaxLayoutBytes = 1 << 20

// ValidateLayoutText performs cheap sanity checks on raw layout text before
// it is handed to the normalizer.
//
// The validation rules are intentionally conservative:
//   - Empty or whitespace-only text has no keys (NO_KEYS)
//   - Valid UTF-8
//   - No null bytes
//   - Maximum length of MaxLayoutBytes
//
// Grammar errors are reported later by the normalizer as MALFORMED_LAYOUT.
func ValidateLayoutText(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeNoKeys, "layout has no keys")
	}

	if len(text) > MaxLayoutBytes {
		return New(ErrCodeInvalidInput, "layout text too long (max %d bytes)", MaxLayoutBytes)
	}

	if !utf8.ValidString(text) {
		return New(ErrCodeInvalidInput, "layout text is not valid UTF-8")
	}

	if strings.ContainsRune(text, '\x00') {
		return New(ErrCodeInvalidInput, "layout text contains null bytes")
	}

	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidatePositive checks that a named numeric parameter is strictly positive.
func ValidatePositive(name string, v float64) error {
	if !(v > 0) {
		return New(ErrCodeInvalidInput, "%s must be positive, got %g", name, v)
	}
	return nil
}

// ValidateNonNegative checks that a named numeric parameter is zero or positive.
func ValidateNonNegative(name string, v float64) error {
	if !(v >= 0) {
		return New(ErrCodeInvalidInput, "%s must not be negative, got %g", name, v)
	}
	return nil
}
