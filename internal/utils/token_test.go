package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken(testSecret, "9b3e43d0-8c2a-4b6f-9c7d-0f1f3f2a1d11", "LIBRARIAN", 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), at.Exp, 2*time.Second)

	uid, role, err := ParseSigned(testSecret, at.Token)
	require.NoError(t, err)
	assert.Equal(t, "9b3e43d0-8c2a-4b6f-9c7d-0f1f3f2a1d11", uid)
	assert.Equal(t, "LIBRARIAN", role)
}

func TestParseSignedRejectsWrongSecret(t *testing.T) {
	at, err := NewAccessToken(testSecret, "user-1", "USER", 15)
	require.NoError(t, err)

	_, _, err = ParseSigned("another-secret", at.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseSignedRejectsExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().UTC().Add(-time.Minute).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, _, err = ParseSigned(testSecret, raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseSignedRejectsMissingSubject(t *testing.T) {
	claims := jwt.MapClaims{
		"exp": time.Now().UTC().Add(time.Minute).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, _, err = ParseSigned(testSecret, raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerificationTokenCarriesOnlySubject(t *testing.T) {
	raw, err := NewVerificationToken(testSecret, "user-42", 2)
	require.NoError(t, err)

	uid, role, err := ParseSigned(testSecret, raw)
	require.NoError(t, err)
	assert.Equal(t, "user-42", uid)
	assert.Empty(t, role)
}

func TestRefreshTokensAreUniqueAndOpaque(t *testing.T) {
	a, err := NewRefreshToken(2)
	require.NoError(t, err)
	b, err := NewRefreshToken(2)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.WithinDuration(t, time.Now().UTC().Add(48*time.Hour), a.Exp, 2*time.Second)
}

func TestHashAndVerifyPasswordLowCost(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4) // low cost keeps the test fast
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "wrong-pass"))
}
