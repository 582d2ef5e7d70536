package handlers

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/rewards-admin/internal/dashboard"
	"github.com/ignatzorin/rewards-admin/internal/http/handlers/common"
	"github.com/ignatzorin/rewards-admin/internal/http/middleware"
	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/notify"
	"github.com/ignatzorin/rewards-admin/internal/service"
	"github.com/ignatzorin/rewards-admin/internal/view"
)

// DashboardLoader запускает загрузку консоли для сессии.
type DashboardLoader interface {
	Load(ctx context.Context, session *models.Session, clientKey string) service.Decision
	Frames(sessionID uuid.UUID) []dashboard.Frame
}

// FlashPopper отдаёт отложенные уведомления браузера.
type FlashPopper interface {
	Pop(clientKey string) []notify.Toast
}

// PageHandler отдаёт полные страницы консоли.
type PageHandler struct {
	dashboard DashboardLoader
	flash     FlashPopper
	cookies   middleware.Cookies
}

// NewPageHandler создаёт хэндлер страниц.
func NewPageHandler(loader DashboardLoader, flash FlashPopper, cookies middleware.Cookies) *PageHandler {
	return &PageHandler{dashboard: loader, flash: flash, cookies: cookies}
}

// Landing GET /.
func (h *PageHandler) Landing(c *gin.Context) {
	h.render(c, view.LandingPage(view.Page{Toasts: h.popFlash(c)}))
}

// Login GET /login.
func (h *PageHandler) Login(c *gin.Context) {
	h.render(c, view.LoginPage(view.Page{Toasts: h.popFlash(c)}))
}

// Dashboard GET /dashboard. Проверка доступа выполняется контроллером;
// при отказе браузер уходит на адрес из решения.
func (h *PageHandler) Dashboard(c *gin.Context) {
	session, _ := common.CurrentSession(c)
	clientKey := common.CurrentClientKey(c)

	decision := h.dashboard.Load(c.Request.Context(), session, clientKey)
	if denied, ok := decision.(service.Denied); ok {
		if denied.EndSession {
			h.cookies.ClearSession(c)
		}
		c.Redirect(http.StatusFound, denied.Redirect)
		return
	}

	h.render(c, view.DashboardPage(view.DashboardPageData{
		Page:   view.Page{Toasts: h.popFlash(c)},
		Frames: h.dashboard.Frames(session.ID),
	}))
}

func (h *PageHandler) popFlash(c *gin.Context) []notify.Toast {
	return h.flash.Pop(common.CurrentClientKey(c))
}

func (h *PageHandler) render(c *gin.Context, page templ.Component) {
	c.Header("Cache-Control", "no-store")
	templ.Handler(page).ServeHTTP(c.Writer, c.Request)
}
