package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHandle(t *testing.T) {
	tests := []struct {
		name    string
		handle  string
		wantErr bool
	}{
		{"simple lowercase", "alice", false},
		{"mixed case", "CoffeeFund", false},
		{"digits and separators", "jar_2024.v1-beta", false},
		{"single character", "a", false},
		{"max length", strings.Repeat("x", 32), false},
		{"empty", "", true},
		{"too long", strings.Repeat("x", 33), true},
		{"space", "coffee fund", true},
		{"unicode", "café", true},
		{"slash", "a/b", true},
		{"at sign", "@alice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHandle(tt.handle)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeHandle(t *testing.T) {
	assert.Equal(t, "coffeefund", NormalizeHandle("CoffeeFund"))
	assert.Equal(t, "coffeefund", NormalizeHandle("COFFEEFUND"))
	assert.Equal(t, "jar_2024.v1-beta", NormalizeHandle("Jar_2024.V1-Beta"))
}

func TestValidateAndNormalizeHandle(t *testing.T) {
	normalized, err := ValidateAndNormalizeHandle("Alice-Jar")
	require.NoError(t, err)
	assert.Equal(t, "alice-jar", normalized)

	_, err = ValidateAndNormalizeHandle("not valid!")
	assert.Error(t, err)
}
