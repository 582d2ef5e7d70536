package service

import (
	"context"
	"sync"
	"time"

	"github.com/ignatzorin/rewards-admin/internal/goroutine"
	"github.com/ignatzorin/rewards-admin/internal/notify"
)

// FlashStore хранит уведомления в памяти до следующей отрисовки страницы.
// Записи живут ограниченное время и удаляются фоновой очисткой.
type FlashStore struct {
	mu      sync.Mutex
	entries map[string][]flashEntry
	now     func() time.Time
}

type flashEntry struct {
	toast     notify.Toast
	expiresAt time.Time
}

// NewFlashStore создаёт хранилище и запускает очистку до отмены ctx.
func NewFlashStore(ctx context.Context, cleanupEvery time.Duration) *FlashStore {
	fs := &FlashStore{
		entries: make(map[string][]flashEntry),
		now:     time.Now,
	}
	if cleanupEvery > 0 {
		goroutine.GoWithContext(ctx, "flash-cleanup", func(ctx context.Context) {
			fs.cleanup(ctx, cleanupEvery)
		})
	}
	return fs
}

// Park откладывает уведомление для клиента.
func (fs *FlashStore) Park(clientKey string, toast notify.Toast, ttl time.Duration) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.entries[clientKey] = append(fs.entries[clientKey], flashEntry{
		toast:     toast,
		expiresAt: fs.now().Add(ttl),
	})
}

// Pop забирает все неистёкшие уведомления клиента в порядке поступления.
func (fs *FlashStore) Pop(clientKey string) []notify.Toast {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries := fs.entries[clientKey]
	delete(fs.entries, clientKey)

	now := fs.now()
	toasts := make([]notify.Toast, 0, len(entries))
	for _, e := range entries {
		if now.Before(e.expiresAt) {
			toasts = append(toasts, e.toast)
		}
	}
	return toasts
}

// cleanup периодически удаляет истёкшие записи.
func (fs *FlashStore) cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fs.evictExpired()
		}
	}
}

func (fs *FlashStore) evictExpired() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	now := fs.now()
	for key, entries := range fs.entries {
		kept := entries[:0]
		for _, e := range entries {
			if now.Before(e.expiresAt) {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(fs.entries, key)
			continue
		}
		fs.entries[key] = kept
	}
}
