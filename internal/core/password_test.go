// AngelaMos | 2026
// password_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNumericCode(t *testing.T) {
	seen := make(map[rune]bool)

	for range 200 {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)

		for _, c := range code {
			require.True(t, c >= '0' && c <= '9', "non-digit %q in %q", c, code)
			seen[c] = true
		}
	}

	// 1200 uniform draws miss a digit with negligible probability
	assert.Len(t, seen, 10)
}

func TestGenerateNumericCode_InvalidLength(t *testing.T) {
	_, err := GenerateNumericCode(0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashTokenIsStable(t *testing.T) {
	token, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.Equal(t, HashToken(token), HashToken(token))
	assert.NotEqual(t, HashToken(token), HashToken(token+"x"))
	assert.Len(t, HashToken(token), 64)
}

func TestVerifyPasswordWithRehashUpgradesWeakParams(t *testing.T) {
	weak := argonParams{memory: 8 * 1024, time: 1, threads: 1, keyLen: 32}
	salt := []byte("0123456789abcdef")
	stored := weak.encode(salt, weak.derive("hunter2hunter2", salt))

	ok, upgraded, err := VerifyPasswordWithRehash("hunter2hunter2", stored)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, upgraded)

	ok, again, err := VerifyPasswordWithRehash("hunter2hunter2", upgraded)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, again)
}

func TestVerifyPasswordTimingSafeWithoutHash(t *testing.T) {
	ok, upgraded, err := VerifyPasswordTimingSafe("anything", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, upgraded)
}

func TestVerifyPasswordRejectsMalformed(t *testing.T) {
	_, err := VerifyPassword("x", "$bcrypt$nope")
	assert.Error(t, err)
}
