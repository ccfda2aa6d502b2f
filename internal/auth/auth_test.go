package auth

import (
	"strings"
	"testing"
	"time"

	"teamcollab/internal/domain/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Issue("alice")
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(token, ".")))

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username())
	assert.Equal(t, issuer, claims.Issuer)
}

func TestParseRejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	valid, err := m.Issue("alice")
	require.NoError(t, err)

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	fresh := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"other secret", func() string {
			other, err := NewTokenManager("other", time.Hour).Issue("alice")
			require.NoError(t, err)
			return other
		}()},
		{"tampered", valid[:len(valid)-2] + "xx"},
		{"other hmac algorithm", sign(jwt.SigningMethodHS384, []byte("secret"), fresh)},
		{"unsigned", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, fresh)},
		{"wrong issuer", sign(jwt.SigningMethodHS256, []byte("secret"), jwt.RegisteredClaims{
			Issuer: "someone-else", Subject: "alice", ExpiresAt: fresh.ExpiresAt,
		})},
		{"no subject", sign(jwt.SigningMethodHS256, []byte("secret"), jwt.RegisteredClaims{
			Issuer: issuer, ExpiresAt: fresh.ExpiresAt,
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Parse(tt.token)
			assert.ErrorIs(t, err, errors.ErrInvalidToken)
		})
	}
}

func TestParseExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	issued := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.Issue("alice")
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(30 * time.Second) }
	_, err = m.Parse(token)
	assert.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, errors.ErrInvalidToken)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, CheckPassword(hash, "secret123"))
	assert.ErrorIs(t, CheckPassword(hash, "secret124"), errors.ErrInvalidCredentials)
	assert.ErrorIs(t, CheckPassword("not-a-hash", "secret123"), errors.ErrInvalidCredentials)

	other, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}
