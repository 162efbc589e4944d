package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevocationStore_RevokeAndCheck(t *testing.T) {
	store := NewRevocationStore()

	assert.False(t, store.IsRevoked("user-1.jti-1"))

	store.Revoke("user-1.jti-1", time.Now().Add(time.Hour))
	assert.True(t, store.IsRevoked("user-1.jti-1"))
	assert.False(t, store.IsRevoked("user-1.jti-2"))
	assert.False(t, store.IsRevoked("user-2.jti-1"))

	// Revocation sticks across repeated checks.
	for i := 0; i < 10; i++ {
		assert.True(t, store.IsRevoked("user-1.jti-1"))
	}
}

func TestRevocationStore_ExpiredEntryIsDead(t *testing.T) {
	store := NewRevocationStore()

	store.Revoke("user-1.jti-1", time.Now().Add(-time.Minute))

	// The token expired on its own; the entry no longer matters.
	assert.False(t, store.IsRevoked("user-1.jti-1"))
}

func TestRevocationStore_Prune(t *testing.T) {
	store := NewRevocationStore()
	now := time.Now().UTC()

	store.Revoke("dead-1", now.Add(-time.Hour))
	store.Revoke("dead-2", now.Add(-time.Second))
	store.Revoke("live", now.Add(time.Hour))

	removed := store.Prune(now)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, store.Len())
	assert.True(t, store.IsRevoked("live"))
}

func TestRevocationStore_ConcurrentAccess(t *testing.T) {
	store := NewRevocationStore()
	expiry := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("user-%d.jti-%d", n, j)
				store.Revoke(key, expiry)
				if !store.IsRevoked(key) {
					t.Errorf("key %s not revoked after Revoke", key)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1600, store.Len())
}

func TestRevocationStore_Sweep(t *testing.T) {
	store := NewRevocationStore()
	store.Revoke("dead", time.Now().Add(-time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.StartSweep(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return store.Len() == 0
	}, time.Second, 10*time.Millisecond)
}
