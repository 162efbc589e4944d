package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-service/internal/model"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Issue("user-123", model.RoleModerator, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, model.RoleModerator, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}

func TestTokenService_UniqueTokenIDs(t *testing.T) {
	svc := NewTokenService("test-secret")

	first, err := svc.Issue("user-123", model.RoleUser, time.Hour)
	require.NoError(t, err)
	second, err := svc.Issue("user-123", model.RoleUser, time.Hour)
	require.NoError(t, err)

	firstClaims, err := svc.Verify(first)
	require.NoError(t, err)
	secondClaims, err := svc.Verify(second)
	require.NoError(t, err)

	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
	assert.NotEqual(t, firstClaims.RevocationKey(), secondClaims.RevocationKey())
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Issue("user-123", model.RoleUser, -time.Second)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestTokenService_WrongSecret(t *testing.T) {
	issuer := NewTokenService("test-secret")
	verifier := NewTokenService("other-secret")

	token, err := issuer.Issue("user-123", model.RoleUser, time.Hour)
	require.NoError(t, err)

	claims, err := verifier.Verify(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, model.ErrTokenSignatureInvalid)
}

func TestTokenService_Tampered(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Issue("user-123", model.RoleUser, time.Hour)
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "xxxx"
	claims, err := svc.Verify(tampered)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, model.ErrTokenSignatureInvalid)
}

func TestTokenService_Malformed(t *testing.T) {
	svc := NewTokenService("test-secret")

	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		claims, err := svc.Verify(raw)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, model.ErrTokenMalformed, "input %q", raw)
	}
}
