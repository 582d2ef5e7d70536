package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/rewards-admin/internal/goroutine"
	"github.com/ignatzorin/rewards-admin/internal/live"
	"github.com/ignatzorin/rewards-admin/internal/logger"
	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/notify"
	"github.com/ignatzorin/rewards-admin/internal/service"
)

const (
	greetingMessage   = "Admin verified. Loading dashboard..."
	refreshMessage    = "Refreshing dashboard..."
	unavailableNotice = "Some dashboard data could not be loaded."
	gateWidget        = "authorization"
)

// errAccessRevoked возвращают загрузчики коллекции users, когда флаг администратора снят.
var errAccessRevoked = errors.New("dashboard: доступ отозван")

// Gate проверка доступа к консоли.
type Gate interface {
	Evaluate(ctx context.Context, session *models.Session) service.Decision
}

// SessionEnder завершает сессию после отказа в доступе.
type SessionEnder interface {
	EndSession(ctx context.Context, sessionID uuid.UUID) error
}

// Renderer превращает модель виджета в HTML фрагмент.
type Renderer interface {
	RenderPanel(ctx context.Context, m Model) (string, error)
}

// Notifier доставляет кадры и уведомления во вкладки клиента.
// Park откладывает уведомление до следующей страницы: после отказа всегда следует переход.
type Notifier interface {
	Notify(clientKey, message string, severity notify.Severity) notify.Toast
	Park(clientKey string, toast notify.Toast)
	Panel(clientKey, panel, html string)
	Redirect(clientKey, url string, delay time.Duration)
}

// Presence сообщает, сколько вкладок клиента подключено.
type Presence interface {
	ClientCount(clientKey string) int
}

// Options параметры контроллера.
type Options struct {
	Location    *time.Location
	IdleTimeout time.Duration
}

// Frame последняя отрисовка виджета.
type Frame struct {
	Panel PanelID
	HTML  string
}

// Controller держит представления консоли по сессиям и перезапускает проверку
// доступа на каждое событие сессии.
type Controller struct {
	stores   Stores
	feed     *live.Feed
	gate     Gate
	sessions SessionEnder
	renderer Renderer
	notifier Notifier
	presence Presence

	loc  *time.Location
	idle time.Duration
	now  func() time.Time
	log  *logrus.Entry

	mu    sync.Mutex
	views map[uuid.UUID]*View
}

// NewController создаёт контроллер консоли.
func NewController(
	stores Stores,
	feed *live.Feed,
	gate Gate,
	sessions SessionEnder,
	renderer Renderer,
	notifier Notifier,
	presence Presence,
	opts Options,
) *Controller {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Controller{
		stores:   stores,
		feed:     feed,
		gate:     gate,
		sessions: sessions,
		renderer: renderer,
		notifier: notifier,
		presence: presence,
		loc:      loc,
		idle:     opts.IdleTimeout,
		now:      time.Now,
		log:      logger.Entry("dashboard"),
		views:    make(map[uuid.UUID]*View),
	}
}

// Load проверяет доступ и загружает все виджеты. Вызывается при открытии страницы.
func (c *Controller) Load(ctx context.Context, session *models.Session, clientKey string) service.Decision {
	return c.load(ctx, session, clientKey, greetingMessage, notify.Success)
}

// Refresh повторяет полную загрузку по кнопке обновления.
func (c *Controller) Refresh(ctx context.Context, session *models.Session, clientKey string) service.Decision {
	return c.load(ctx, session, clientKey, refreshMessage, notify.Info)
}

func (c *Controller) load(ctx context.Context, session *models.Session, clientKey, message string, severity notify.Severity) service.Decision {
	decision := c.gate.Evaluate(ctx, session)
	if denied, ok := decision.(service.Denied); ok {
		c.deny(ctx, session, clientKey, denied)
		return decision
	}

	c.notifier.Notify(clientKey, message, severity)
	view := c.ensureView(session, clientKey)
	c.startPanels(view, session)
	c.scheduleIdleCheck(view)
	return decision
}

// Attach проверяет доступ для новой WebSocket вкладки и возвращает последние кадры
// виджетов для повторной отправки. Если представления ещё нет, оно загружается.
func (c *Controller) Attach(ctx context.Context, session *models.Session, clientKey string) (service.Decision, []Frame) {
	decision := c.gate.Evaluate(ctx, session)
	if denied, ok := decision.(service.Denied); ok {
		c.deny(ctx, session, clientKey, denied)
		return decision, nil
	}

	c.mu.Lock()
	view, exists := c.views[session.ID]
	c.mu.Unlock()

	if !exists {
		view = c.ensureView(session, clientKey)
		c.startPanels(view, session)
		return decision, nil
	}

	view.stopIdleTimer()
	return decision, view.Frames()
}

// Detach вызывается, когда вкладка закрыла WebSocket.
func (c *Controller) Detach(sessionID uuid.UUID) {
	c.mu.Lock()
	view, ok := c.views[sessionID]
	c.mu.Unlock()

	if ok {
		c.scheduleIdleCheck(view)
	}
}

// Snapshot возвращает текущие модели виджетов сессии.
func (c *Controller) Snapshot(sessionID uuid.UUID) map[PanelID]Model {
	c.mu.Lock()
	view, ok := c.views[sessionID]
	c.mu.Unlock()

	if !ok {
		return map[PanelID]Model{}
	}
	return view.Models()
}

// Frames возвращает последние кадры виджетов сессии для первичной отрисовки страницы.
func (c *Controller) Frames(sessionID uuid.UUID) []Frame {
	c.mu.Lock()
	view, ok := c.views[sessionID]
	c.mu.Unlock()

	if !ok {
		return nil
	}
	return view.Frames()
}

// HandleSessionEvent реагирует на события провайдера личности.
func (c *Controller) HandleSessionEvent(event service.SessionEvent) {
	if event.Kind == service.SessionEnded {
		c.teardown(event.SessionID)
	}
}

// Shutdown освобождает все подписки.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	views := c.views
	c.views = make(map[uuid.UUID]*View)
	c.mu.Unlock()

	for _, v := range views {
		v.close()
	}
}

// ActiveViews возвращает число открытых представлений.
func (c *Controller) ActiveViews() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.views)
}

func (c *Controller) deny(ctx context.Context, session *models.Session, clientKey string, denied service.Denied) {
	entry := c.log.WithField("reason", denied.Reason)
	if session != nil {
		entry = entry.WithField("session_id", session.ID)
		c.teardown(session.ID)
	}
	entry.Warn("доступ к консоли запрещён")

	c.notifier.Park(clientKey, notify.New(denied.Message, denied.Severity))
	c.notifier.Redirect(clientKey, denied.Redirect, 0)

	if denied.EndSession && session != nil {
		if err := c.sessions.EndSession(ctx, session.ID); err != nil {
			entry.WithError(err).Error("не удалось завершить сессию")
		}
	}
}

// ensureView возвращает представление сессии, создавая его при необходимости.
// Представление другой сессии той же вкладки закрывается.
func (c *Controller) ensureView(session *models.Session, clientKey string) *View {
	c.mu.Lock()
	var stale []*View
	for id, v := range c.views {
		if id != session.ID && v.clientKey == clientKey {
			stale = append(stale, v)
			delete(c.views, id)
		}
	}

	view, ok := c.views[session.ID]
	if !ok {
		view = newView(session.ID, clientKey)
		c.views[session.ID] = view
	}
	c.mu.Unlock()

	for _, v := range stale {
		v.close()
	}
	return view
}

// startPanels запускает загрузчики всех виджетов параллельно.
// Прежние подписки виджетов освобождаются до регистрации новых.
func (c *Controller) startPanels(view *View, session *models.Session) {
	for _, l := range c.loaders() {
		handler := func(m Model, err error) { c.apply(view, l.panel, m, err) }

		var sub *live.Subscription
		switch l.collection {
		case "":
			sub = live.Once[Model](view.ctx, l.load, handler)
		case models.CollectionUsers:
			// То же событие может снять флаг администратора: доступ проверяется до чтения.
			sub = live.Subscribe[Model](view.ctx, c.feed, l.collection, c.guarded(view, session, l.load), handler)
		default:
			sub = live.Subscribe[Model](view.ctx, c.feed, l.collection, l.load, handler)
		}
		view.registry.Acquire(string(l.panel), sub)
	}

	// Изменение собственной записи администратора тоже событие сессии.
	watch := live.Subscribe[service.Decision](view.ctx, c.feed, models.CollectionUsers,
		func(ctx context.Context) (service.Decision, error) {
			return c.gate.Evaluate(ctx, session), nil
		},
		func(d service.Decision, _ error) {
			denied, ok := d.(service.Denied)
			if !ok {
				return
			}
			view.revoke()
			// Закрытие представления освобождает эту же подписку, поэтому выходим из обработчика.
			goroutine.Go("dashboard:deny", func() {
				c.deny(context.Background(), session, view.clientKey, denied)
			})
		})
	view.registry.Acquire(gateWidget, watch)
}

// guarded выполняет загрузку только при действующем доступе.
// Отказ только помечает представление отозванным, закрывает его наблюдение за записью администратора.
func (c *Controller) guarded(view *View, session *models.Session, load func(ctx context.Context) (Model, error)) func(ctx context.Context) (Model, error) {
	return func(ctx context.Context) (Model, error) {
		if _, denied := c.gate.Evaluate(ctx, session).(service.Denied); denied {
			view.revoke()
			return nil, errAccessRevoked
		}
		return load(ctx)
	}
}

// apply отрисовывает модель и отправляет кадр. Ошибка чтения превращается в заглушку.
// После отзыва доступа кадры не отправляются.
func (c *Controller) apply(view *View, panel PanelID, m Model, err error) {
	if view.Revoked() {
		return
	}
	entry := c.log.WithField("panel", panel).WithField("session_id", view.sessionID)

	if err != nil {
		entry.WithError(err).Error("не удалось загрузить данные виджета")
		m = Unavailable(panel)
		c.notifier.Notify(view.clientKey, unavailableNotice, notify.Error)
	}

	html, rerr := c.renderer.RenderPanel(view.ctx, m)
	if rerr != nil {
		entry.WithError(rerr).Error("не удалось отрисовать виджет")
		return
	}

	if view.Revoked() {
		return
	}
	view.store(panel, m, html)
	c.notifier.Panel(view.clientKey, string(panel), html)
}

func (c *Controller) scheduleIdleCheck(view *View) {
	if c.idle <= 0 || c.presence == nil {
		return
	}
	view.resetIdleTimer(c.idle, func() {
		if c.presence.ClientCount(view.clientKey) > 0 {
			return
		}
		c.log.WithField("session_id", view.sessionID).Debug("представление закрыто по простою")
		c.teardown(view.sessionID)
	})
}

func (c *Controller) teardown(sessionID uuid.UUID) {
	c.mu.Lock()
	view, ok := c.views[sessionID]
	delete(c.views, sessionID)
	c.mu.Unlock()

	if ok {
		view.close()
	}
}
