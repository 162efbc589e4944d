package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const pruneThreshold = 1024

// RevocationStore records tokens invalidated before their natural expiry.
// It is the only mutable shared state in the auth core: reads take the
// read lock only, writes prune stale entries opportunistically once the map
// grows past pruneThreshold. Entries are in-memory only and do not survive
// a restart.
type RevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewRevocationStore() *RevocationStore {
	return &RevocationStore{entries: map[string]time.Time{}}
}

// Revoke marks key as invalid until expiresAt. After expiresAt the token is
// rejected by signature/expiry checks anyway, so the entry becomes prunable.
func (s *RevocationStore) Revoke(key string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = expiresAt
	if len(s.entries) > pruneThreshold {
		s.pruneLocked(time.Now().UTC())
	}
}

func (s *RevocationStore) IsRevoked(key string) bool {
	s.mu.RLock()
	expiresAt, exists := s.entries[key]
	s.mu.RUnlock()

	return exists && !time.Now().UTC().After(expiresAt)
}

// Prune drops entries whose tokens have expired on their own. A live entry
// is never removed.
func (s *RevocationStore) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(now)
}

func (s *RevocationStore) pruneLocked(now time.Time) int {
	removed := 0
	for key, expiresAt := range s.entries {
		if now.After(expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *RevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartSweep periodically prunes dead entries until ctx is cancelled. Run it
// in its own goroutine from the composition root.
func (s *RevocationStore) StartSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Prune(time.Now().UTC()); removed > 0 {
				slog.Debug("revocation store swept", "removed", removed, "remaining", s.Len())
			}
		}
	}
}
