package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/rewards-admin/internal/live"
)

// View представление консоли одной сессии: подписки виджетов и их последние кадры.
type View struct {
	sessionID uuid.UUID
	clientKey string
	registry  *live.Registry
	ctx       context.Context
	cancel    context.CancelFunc
	revoked   atomic.Bool

	mu     sync.RWMutex
	models map[PanelID]Model
	html   map[PanelID]string
	idle   *time.Timer
}

func newView(sessionID uuid.UUID, clientKey string) *View {
	ctx, cancel := context.WithCancel(context.Background())
	return &View{
		sessionID: sessionID,
		clientKey: clientKey,
		registry:  live.NewRegistry(),
		ctx:       ctx,
		cancel:    cancel,
		models:    make(map[PanelID]Model),
		html:      make(map[PanelID]string),
	}
}

func (v *View) store(panel PanelID, m Model, html string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.models[panel] = m
	v.html[panel] = html
}

// Frames возвращает последние кадры в порядке отрисовки виджетов.
func (v *View) Frames() []Frame {
	v.mu.RLock()
	defer v.mu.RUnlock()

	frames := make([]Frame, 0, len(v.html))
	for _, p := range Panels {
		if html, ok := v.html[p]; ok {
			frames = append(frames, Frame{Panel: p, HTML: html})
		}
	}
	return frames
}

// Models возвращает копию последних моделей.
func (v *View) Models() map[PanelID]Model {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make(map[PanelID]Model, len(v.models))
	for k, m := range v.models {
		out[k] = m
	}
	return out
}

func (v *View) resetIdleTimer(d time.Duration, fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.idle != nil {
		v.idle.Stop()
	}
	v.idle = time.AfterFunc(d, fn)
}

func (v *View) stopIdleTimer() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.idle != nil {
		v.idle.Stop()
		v.idle = nil
	}
}

// revoke запрещает отправку кадров. Представление закрывается отдельно.
func (v *View) revoke() {
	v.revoked.Store(true)
}

// Revoked сообщает, что доступ сессии отозван.
func (v *View) Revoked() bool {
	return v.revoked.Load()
}

// close освобождает все подписки представления.
func (v *View) close() {
	v.stopIdleTimer()
	v.registry.ReleaseAll()
	v.cancel()
}
