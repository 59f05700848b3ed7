package validation

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ValidateIdentity validates a caller identity, which is a Core blockchain
// address (44 hex characters = 22 bytes)
func ValidateIdentity(identity string) error {
	if identity == "" {
		return fmt.Errorf("identity cannot be empty")
	}

	normalized := strings.TrimPrefix(identity, "0x")
	normalized = strings.TrimPrefix(normalized, "0X")

	if len(normalized) != 44 {
		return fmt.Errorf("invalid identity length: expected 44 characters (without 0x), got %d", len(normalized))
	}

	if _, err := hex.DecodeString(normalized); err != nil {
		return fmt.Errorf("invalid hex identity: %w", err)
	}

	return nil
}

// NormalizeIdentity converts an identity to lowercase without 0x prefix.
// Escrow balances and ownership lookups are keyed by this form.
func NormalizeIdentity(identity string) string {
	identity = strings.TrimPrefix(identity, "0x")
	identity = strings.TrimPrefix(identity, "0X")
	return strings.ToLower(identity)
}

// ValidateAndNormalizeIdentity validates an identity and returns its normalized form
func ValidateAndNormalizeIdentity(identity string) (string, error) {
	if err := ValidateIdentity(identity); err != nil {
		return "", err
	}
	return NormalizeIdentity(identity), nil
}
