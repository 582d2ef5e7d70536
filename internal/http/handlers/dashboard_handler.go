package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/rewards-admin/internal/dashboard"
	"github.com/ignatzorin/rewards-admin/internal/http/handlers/common"
	"github.com/ignatzorin/rewards-admin/internal/http/middleware"
	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/pkg/apperror"
	"github.com/ignatzorin/rewards-admin/internal/service"
)

// DashboardRefresher перезапускает загрузку и отдаёт текущие модели.
type DashboardRefresher interface {
	Refresh(ctx context.Context, session *models.Session, clientKey string) service.Decision
	Snapshot(sessionID uuid.UUID) map[dashboard.PanelID]dashboard.Model
}

// DashboardHandler API консоли: обновление и снимок виджетов.
type DashboardHandler struct {
	dashboard DashboardRefresher
	cookies   middleware.Cookies
}

// NewDashboardHandler создаёт хэндлер.
func NewDashboardHandler(refresher DashboardRefresher, cookies middleware.Cookies) *DashboardHandler {
	return &DashboardHandler{dashboard: refresher, cookies: cookies}
}

// Refresh POST /api/dashboard/refresh. Новые кадры приходят по WebSocket.
func (h *DashboardHandler) Refresh(c *gin.Context) {
	session, _ := common.CurrentSession(c)

	decision := h.dashboard.Refresh(c.Request.Context(), session, common.CurrentClientKey(c))
	if denied, ok := decision.(service.Denied); ok {
		if denied.EndSession {
			h.cookies.ClearSession(c)
		}
		appErr := middleware.DeniedError(denied)
		_ = c.Error(appErr)
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Code, "redirect": denied.Redirect})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "refreshing"})
}

// Snapshot GET /api/dashboard/snapshot — текущие модели виджетов сессии.
func (h *DashboardHandler) Snapshot(c *gin.Context) {
	session, err := common.CurrentSession(c)
	if err != nil {
		appErr := apperror.ErrUnauthorized.WithCause(err)
		_ = c.Error(appErr)
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Code})
		return
	}

	c.JSON(http.StatusOK, gin.H{"panels": h.dashboard.Snapshot(session.ID)})
}
