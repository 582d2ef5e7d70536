package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/rewards-admin/internal/dashboard"
	"github.com/ignatzorin/rewards-admin/internal/http/handlers/common"
	"github.com/ignatzorin/rewards-admin/internal/logger"
	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/service"
	"github.com/ignatzorin/rewards-admin/internal/ws"
)

// DashboardAttacher подключает вкладку к представлению сессии.
type DashboardAttacher interface {
	Attach(ctx context.Context, session *models.Session, clientKey string) (service.Decision, []dashboard.Frame)
	Detach(sessionID uuid.UUID)
}

// PanelPusher отправляет кадр виджета во вкладки браузера.
type PanelPusher interface {
	Panel(clientKey, panel, html string)
}

// WSHandler отвечает за установку WebSocket соединений.
type WSHandler struct {
	hub       *ws.Hub
	dashboard DashboardAttacher
	panels    PanelPusher
	upgrader  websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер. Upgrader по умолчанию проверяет Origin
// на совпадение с Host: cookie сессии не должны работать с чужих страниц.
func NewWSHandler(hub *ws.Hub, attacher DashboardAttacher, panels PanelPusher) *WSHandler {
	return &WSHandler{
		hub:       hub,
		dashboard: attacher,
		panels:    panels,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Handle обслуживает GET /api/ws. Сессия берётся из cookie.
func (h *WSHandler) Handle(c *gin.Context) {
	session, err := common.CurrentSession(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	clientKey := common.CurrentClientKey(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Entry("ws").WithError(err).Warn("не удалось открыть WebSocket")
		return
	}

	// Регистрация до Attach: кадры новых загрузок не должны потеряться.
	client := ws.NewClient(conn, h.hub, clientKey)
	h.hub.Register(client)

	decision, frames := h.dashboard.Attach(c.Request.Context(), session, clientKey)
	if _, granted := decision.(service.Granted); granted {
		for _, f := range frames {
			h.panels.Panel(clientKey, string(f.Panel), f.HTML)
		}
	}

	client.Run(c.Request.Context())
	h.dashboard.Detach(session.ID)
}
