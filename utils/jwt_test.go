package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, claims, err := issuer.Generate("user-1", "user@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", parsed.Subject)
	assert.Equal(t, "user@example.com", parsed.Email)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestTokenIssuer_UniqueTokenIDs(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	_, first, err := issuer.Generate("user-1", "user@example.com")
	require.NoError(t, err)
	_, second, err := issuer.Generate("user-1", "user@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute)
	issued := time.Now()
	issuer.now = func() time.Time { return issued }

	token, _, err := issuer.Generate("user-1", "user@example.com")
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = issuer.Validate(token)
	assert.Error(t, err)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	token, _, err := NewTokenIssuer("one", time.Hour).Generate("user-1", "user@example.com")
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	_, err := NewTokenIssuer("test-secret", time.Hour).Validate("bad-token")
	assert.Error(t, err)
}

func TestTokenIssuer_RequiresExpiry(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email: "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-1",
			ID:      "jti-1",
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
}
