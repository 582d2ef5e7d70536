package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/rewards-admin/internal/notify"
)

func TestFlashStore_PopReturnsInOrderAndClears(t *testing.T) {
	store := NewFlashStore(context.Background(), 0)
	first := notify.New("Access denied. Admins only.", notify.Error)
	second := notify.New("Refreshing dashboard...", notify.Info)

	store.Park("client", first, time.Minute)
	store.Park("client", second, time.Minute)

	got := store.Pop("client")
	assert.Equal(t, []notify.Toast{first, second}, got)
	assert.Empty(t, store.Pop("client"))
}

func TestFlashStore_ExpiredEntriesDropped(t *testing.T) {
	store := NewFlashStore(context.Background(), 0)
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Park("client", notify.New("old", notify.Info), time.Second)
	store.Park("other", notify.New("fresh", notify.Info), time.Hour)

	now = now.Add(2 * time.Second)
	store.evictExpired()

	assert.Empty(t, store.Pop("client"))
	assert.Len(t, store.Pop("other"), 1)
}

func TestFlashStore_BackgroundCleanupEvicts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewFlashStore(ctx, 5*time.Millisecond)

	store.Park("client", notify.New("stale", notify.Warning), time.Millisecond)

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.entries) == 0
	}, time.Second, 5*time.Millisecond)
}
