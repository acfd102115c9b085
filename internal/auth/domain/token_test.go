package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := m.Issue(42, "admin@medsupply.local", "ADMIN")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin@medsupply.local", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m := NewTokenManager("secret-a", time.Hour)
	token, _, err := m.Issue(1, "user@medsupply.local", "USER")
	require.NoError(t, err)

	other := NewTokenManager("secret-b", time.Hour)
	_, err = other.Parse(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)
	token, _, err := m.Issue(1, "user@medsupply.local", "USER")
	require.NoError(t, err)

	_, err = m.Parse(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	_, err := m.Parse("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}
