package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-auth-service/internal/model"
	"go-auth-service/pkg/apierror"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserStore is the persistence collaborator. Implemented by
// repository.UserRepository (pgx) and repository.MemoryUserRepository.
type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) error
	List(ctx context.Context, offset int, limit int) ([]model.User, error)
	Count(ctx context.Context) (int, error)
}

// AuthService composes the password hasher, token service, and revocation
// store into the register/login/logout flows.
type AuthService struct {
	users       UserStore
	hasher      *PasswordHasher
	tokens      *TokenService
	revocations *RevocationStore
	tokenTTL    time.Duration
}

func NewAuthService(users UserStore, hasher *PasswordHasher, tokens *TokenService, revocations *RevocationStore, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
		tokenTTL:    tokenTTL,
	}
}

func (s *AuthService) Register(ctx context.Context, email string, password string) (model.PublicUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if !emailPattern.MatchString(email) {
		return model.PublicUser{}, apierror.BadRequest("a valid email address is required", "email")
	}
	if len(password) < minPasswordLength {
		return model.PublicUser{}, apierror.BadRequest(fmt.Sprintf("password must be at least %d characters", minPasswordLength), "password")
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return model.PublicUser{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}

// Login verifies credentials and issues a token. Every failure path —
// unknown email or wrong password — returns the identical
// model.ErrInvalidCredentials so the response never reveals whether the
// email exists.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.LoginResponse{}, model.ErrInvalidCredentials
		}
		return model.LoginResponse{}, err
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		return model.LoginResponse{}, model.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role, s.tokenTTL)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("issue token: %w", err)
	}

	return model.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokenTTL.Seconds()),
	}, nil
}

// Logout revokes the token until its natural expiry. A token that no longer
// verifies is already unusable, so logging it out is a no-op success.
func (s *AuthService) Logout(_ context.Context, rawToken string) error {
	claims, err := s.tokens.Verify(rawToken)
	if err != nil {
		slog.Debug("logout of invalid token ignored", "reason", err)
		return nil
	}

	s.revocations.Revoke(claims.RevocationKey(), claims.ExpiresAt.Time)
	return nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *AuthService) ListUsers(ctx context.Context, page int, limit int) (model.UserListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return model.UserListResponse{}, err
	}

	users, err := s.users.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return model.UserListResponse{}, err
	}

	public := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	totalPages := (total + limit - 1) / limit
	return model.UserListResponse{
		Users: public,
		Meta: model.Meta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// EnsureAdmin seeds a bootstrap admin account if the email is not taken.
// Called once at startup when ADMIN_EMAIL/ADMIN_PASSWORD are configured.
func (s *AuthService) EnsureAdmin(ctx context.Context, email string, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, model.ErrEmailAlreadyExists) {
			return nil
		}
		return err
	}

	slog.Info("bootstrap admin created", "email", email)
	return nil
}
