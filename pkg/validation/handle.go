package validation

import (
	"fmt"
	"strings"
)

const (
	// MaxHandleLength is the maximum handle length in bytes
	MaxHandleLength = 32
)

// ValidateHandle validates a jar handle format.
// A handle is 1..32 bytes restricted to [A-Za-z0-9_.-].
func ValidateHandle(handle string) error {
	if handle == "" {
		return fmt.Errorf("handle cannot be empty")
	}

	if len(handle) > MaxHandleLength {
		return fmt.Errorf("invalid handle length: expected at most %d bytes, got %d", MaxHandleLength, len(handle))
	}

	for i := 0; i < len(handle); i++ {
		c := handle[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '.' || c == '-' {
			continue
		}
		return fmt.Errorf("invalid character %q in handle at position %d", c, i)
	}

	return nil
}

// NormalizeHandle converts a handle to its canonical lowercase form.
// Uniqueness is case-insensitive while storage stays case-preserving,
// so all collision checks go through this form.
func NormalizeHandle(handle string) string {
	return strings.ToLower(handle)
}

// ValidateAndNormalizeHandle validates a handle and returns its normalized form
func ValidateAndNormalizeHandle(handle string) (string, error) {
	if err := ValidateHandle(handle); err != nil {
		return "", err
	}
	return NormalizeHandle(handle), nil
}
