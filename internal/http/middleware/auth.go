package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/rewards-admin/internal/logger"
	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/notify"
	"github.com/ignatzorin/rewards-admin/internal/pkg/apperror"
	"github.com/ignatzorin/rewards-admin/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextSessionKey = "session"
	ContextAdminKey   = "admin"
	ContextClientKey  = "clientKey"
)

// SessionResolver находит сессию по токену cookie.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*models.Session, error)
}

// AccessGate проверка прав администратора.
type AccessGate interface {
	Evaluate(ctx context.Context, session *models.Session) service.Decision
}

// SessionEnder завершает сессию.
type SessionEnder interface {
	EndSession(ctx context.Context, sessionID uuid.UUID) error
}

// FlashParker откладывает уведомление до следующей страницы.
type FlashParker interface {
	Park(clientKey string, toast notify.Toast)
}

// SessionMiddleware кладёт в контекст сессию из cookie, если она действительна.
// Запрос без сессии пропускается дальше: решение принимает проверка доступа.
func SessionMiddleware(resolver SessionResolver, cookies Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookies.Session)
		if err == nil && token != "" {
			session, err := resolver.ResolveSession(c.Request.Context(), token)
			switch {
			case err == nil:
				c.Set(ContextSessionKey, session)
			case errors.Is(err, service.ErrNoSession):
				cookies.ClearSession(c)
			default:
				logger.Entry("http").WithError(err).Error("не удалось проверить сессию")
			}
		}
		c.Next()
	}
}

// RequireAdmin пропускает только подтверждённого администратора.
// Отказ завершает сессию, если этого требует решение, и возвращает адрес перехода.
func RequireAdmin(gate AccessGate, sessions SessionEnder, flash FlashParker, cookies Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFrom(c)

		switch d := gate.Evaluate(c.Request.Context(), session).(type) {
		case service.Granted:
			c.Set(ContextAdminKey, d.Record)
			c.Next()
		case service.Denied:
			if d.EndSession && session != nil {
				if err := sessions.EndSession(c.Request.Context(), session.ID); err != nil {
					logger.Entry("http").WithError(err).WithField("session_id", session.ID).Warn("не удалось завершить сессию")
				}
				cookies.ClearSession(c)
			}
			flash.Park(ClientKeyFrom(c), notify.New(d.Message, d.Severity))

			appErr := DeniedError(d)
			_ = c.Error(appErr)
			c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{"error": appErr.Code, "redirect": d.Redirect})
		}
	}
}

// DeniedError переводит отказ в ошибку с HTTP статусом:
// нет сессии 401, нет прав 403.
func DeniedError(d service.Denied) *apperror.AppError {
	switch d.Reason {
	case service.ReasonNoSession, service.ReasonLookupFailed:
		return apperror.ErrUnauthorized.WithCause(errors.New(string(d.Reason)))
	default:
		return apperror.ErrForbidden.WithCause(errors.New(string(d.Reason)))
	}
}

// SessionFrom возвращает сессию из контекста или nil.
func SessionFrom(c *gin.Context) *models.Session {
	raw, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	session, _ := raw.(*models.Session)
	return session
}

// ClientKeyFrom возвращает ключ браузера из контекста.
func ClientKeyFrom(c *gin.Context) string {
	return c.GetString(ContextClientKey)
}

// NoStore запрещает кеширование ответов с данными консоли.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
