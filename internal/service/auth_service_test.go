package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-auth-service/internal/model"
	"go-auth-service/internal/repository"
	"go-auth-service/pkg/apierror"
)

func newTestAuthService(t *testing.T, ttl time.Duration) (*AuthService, *repository.MemoryUserRepository, *RevocationStore, *TokenService) {
	t.Helper()

	users := repository.NewMemoryUserRepository()
	hasher := NewPasswordHasher(bcrypt.MinCost, 2)
	tokens := NewTokenService("test-secret")
	revocations := NewRevocationStore()

	return NewAuthService(users, hasher, tokens, revocations, ttl), users, revocations, tokens
}

func TestAuthService_Register(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t, 15*time.Minute)
	ctx := context.Background()

	user, err := svc.Register(ctx, "A@X.com", "pw123456")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t, 15*time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "A@X.COM", "otherpass")
	assert.ErrorIs(t, err, model.ErrEmailAlreadyExists)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t, 15*time.Minute)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"missing email", "", "pw123456"},
		{"bad email", "not-an-email", "pw123456"},
		{"short password", "a@x.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password)
			var apiErr *apierror.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, _, _, tokens := newTestAuthService(t, 15*time.Minute)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	resp, err := svc.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(900), resp.ExpiresIn)

	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.Subject)
	assert.Equal(t, model.RoleUser, claims.Role)
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t, 15*time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "a@x.com", "wrong-password")
	_, unknownEmail := svc.Login(ctx, "nobody@x.com", "pw123456")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.ErrorIs(t, wrongPassword, model.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, model.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, revocations, tokens := newTestAuthService(t, 15*time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)
	resp, err := svc.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	require.False(t, revocations.IsRevoked(claims.RevocationKey()))

	require.NoError(t, svc.Logout(ctx, resp.Token))
	assert.True(t, revocations.IsRevoked(claims.RevocationKey()))
}

func TestAuthService_Logout_InvalidTokenIsNoOp(t *testing.T) {
	svc, _, revocations, _ := newTestAuthService(t, 15*time.Minute)

	require.NoError(t, svc.Logout(context.Background(), "not-a-token"))
	assert.Equal(t, 0, revocations.Len())
}

func TestAuthService_GetUserByID(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t, 15*time.Minute)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	user, err := svc.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, registered, user)

	_, err = svc.GetUserByID(ctx, "missing-id")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestAuthService_ListUsers(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t, 15*time.Minute)
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := svc.Register(ctx, email, "pw123456")
		require.NoError(t, err)
	}

	resp, err := svc.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Users, 2)
	assert.Equal(t, 3, resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)

	resp, err = svc.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Users, 1)

	// Out-of-range values fall back to defaults.
	resp, err = svc.ListUsers(ctx, -5, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.Limit)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t, 15*time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "root@x.com", "pw123456"))

	admin, err := users.FindByEmail(ctx, "root@x.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	// Idempotent: a second call leaves the existing account alone.
	require.NoError(t, svc.EnsureAdmin(ctx, "root@x.com", "different"))
	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
