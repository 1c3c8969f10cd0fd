package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, expiresAt, err := svc.Issue("u1", "alice", "customer")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "customer", claims.Role)
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)
	token, _, err := svc.Issue("u1", "alice", "customer")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenService("secret-a", time.Hour).Issue("u1", "alice", "customer")
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewTokenService("test-secret", time.Hour).Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
