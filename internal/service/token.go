package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-auth-service/internal/model"
)

// TokenService issues and verifies HS256-signed tokens. It is immutable
// after construction; verification is pure computation over the token bytes
// and needs no locking. Revocation is deliberately not checked here — that
// composition happens in the auth middleware.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

func (s *TokenService) Issue(subject string, role model.Role, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &model.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses and checks the token signature and expiry. The outcome is
// one of four disjoint results: ErrTokenMalformed, ErrTokenSignatureInvalid,
// ErrTokenExpired, or the decoded claims.
func (s *TokenService) Verify(tokenString string) (*model.Claims, error) {
	claims := &model.Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, model.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, model.ErrTokenMalformed
	case err != nil:
		return nil, model.ErrTokenSignatureInvalid
	case !parsed.Valid:
		return nil, model.ErrTokenSignatureInvalid
	}

	if claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil || !claims.Role.Valid() {
		return nil, model.ErrTokenMalformed
	}

	return claims, nil
}
