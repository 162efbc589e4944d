package service

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"go-auth-service/internal/model"
)

// PasswordHasher wraps bcrypt behind a bounded worker pool. Hashing is
// deliberately expensive, so the semaphore keeps a burst of logins or
// registrations from saturating every scheduler thread.
type PasswordHasher struct {
	cost int
	sem  *semaphore.Weighted
}

func NewPasswordHasher(cost int, workers int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = 12
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &PasswordHasher{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(workers)),
	}
}

// Hash computes a salted bcrypt hash. Every call salts with fresh
// randomness, so two hashes of the same password differ. The context is
// honored only while waiting for a pool slot; the hash itself is short,
// bounded work.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire hash worker: %w", err)
	}
	defer h.sem.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrHashing, err)
	}

	return string(hash), nil
}

// Verify reports whether password matches hash. Mismatch is not an error;
// the comparison is constant-time inside bcrypt.
func (h *PasswordHasher) Verify(ctx context.Context, password string, hash string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
