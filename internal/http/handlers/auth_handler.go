package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/rewards-admin/internal/http/handlers/common"
	"github.com/ignatzorin/rewards-admin/internal/http/middleware"
	"github.com/ignatzorin/rewards-admin/internal/logger"
	"github.com/ignatzorin/rewards-admin/internal/notify"
	"github.com/ignatzorin/rewards-admin/internal/pkg/apperror"
	"github.com/ignatzorin/rewards-admin/internal/service"
)

// Loginer выполняет вход администратора.
type Loginer interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
}

// SessionEnder завершает сессию.
type SessionEnder interface {
	EndSession(ctx context.Context, sessionID uuid.UUID) error
}

// AuthHandler предоставляет HTTP слой для входа и выхода администратора.
type AuthHandler struct {
	login    Loginer
	sessions SessionEnder
	cookies  middleware.Cookies
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(login Loginer, sessions SessionEnder, cookies middleware.Cookies) *AuthHandler {
	return &AuthHandler{login: login, sessions: sessions, cookies: cookies}
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login обрабатывает POST /api/auth/login. Принимает JSON или форму.
// Пустые поля проверяет сервис входа, поэтому binding без required.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		common.RespondAppError(c, apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректное тело запроса"),
			notify.New("Please fill in all fields.", notify.Warning))
		return
	}

	result, err := h.login.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondAppError(c, loginError(err), result.Notification)
		return
	}

	h.cookies.SetSession(c, result.Token)
	c.JSON(http.StatusOK, gin.H{
		"notification":      result.Notification,
		"redirect":          result.Redirect,
		"redirect_after_ms": result.RedirectAfter.Milliseconds(),
	})
}

// Logout обрабатывает POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if session, err := common.CurrentSession(c); err == nil {
		if err := h.sessions.EndSession(c.Request.Context(), session.ID); err != nil {
			logger.Entry("http").WithError(err).WithField("session_id", session.ID).Error("не удалось завершить сессию")
		}
	}

	h.cookies.ClearSession(c)
	c.JSON(http.StatusOK, gin.H{"redirect": service.LoginPath})
}
