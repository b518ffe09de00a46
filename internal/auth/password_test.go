package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	first, err := HashPassword("password123")
	require.NoError(t, err)
	second, err := HashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, "password123", first)
	assert.NotEqual(t, first, second, "salt must differ per call")
}

func TestComparePassword(t *testing.T) {
	hashed, err := HashPassword("password123")
	require.NoError(t, err)

	ok, err := ComparePassword(hashed, "password123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePassword(hashed, "password124")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ComparePassword("not-a-bcrypt-hash", "password123")
	assert.Error(t, err)
}

func TestHashPassword_LongPasswords(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"72 bytes", strings.Repeat("a", 72)},
		{"73 bytes", strings.Repeat("a", 73)},
		{"128 characters", strings.Repeat("b", 128)},
		{"multi-byte across the limit", strings.Repeat("é", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := HashPassword(tt.password)
			require.NoError(t, err)

			ok, err := ComparePassword(hashed, tt.password)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = ComparePassword(hashed, "short")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestComparePassword_IgnoresBytesPastLimit(t *testing.T) {
	base := strings.Repeat("x", 72)
	hashed, err := HashPassword(base + "first-suffix")
	require.NoError(t, err)

	ok, err := ComparePassword(hashed, base+"other-suffix")
	require.NoError(t, err)
	assert.True(t, ok)
}
