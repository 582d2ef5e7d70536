package common

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/rewards-admin/internal/http/middleware"
	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/notify"
	"github.com/ignatzorin/rewards-admin/internal/pkg/apperror"
)

var (
	// ErrNoSession is returned when the request carries no admin session
	ErrNoSession = errors.New("сессия не найдена в контексте")

	// ErrInvalidUUID is returned when UUID parsing fails
	ErrInvalidUUID = errors.New("неверный формат UUID")
)

// CurrentSession extracts the admin session from Gin context
func CurrentSession(c *gin.Context) (*models.Session, error) {
	session := middleware.SessionFrom(c)
	if session == nil {
		return nil, ErrNoSession
	}
	return session, nil
}

// CurrentClientKey returns the browser key issued by ClientKeyMiddleware
func CurrentClientKey(c *gin.Context) string {
	return middleware.ClientKeyFrom(c)
}

// ParseUUIDParam parses UUID from URL parameter
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	param := c.Param(paramName)
	if param == "" {
		return uuid.Nil, fmt.Errorf("параметр %s отсутствует", paramName)
	}

	parsed, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}

	return parsed, nil
}

// RespondNotification sends a toast with the status of the operation outcome
func RespondNotification(c *gin.Context, status int, toast notify.Toast) {
	c.JSON(status, gin.H{"notification": toast})
}

// RespondAppError records the error for ErrorHandler and answers with its status and a toast
func RespondAppError(c *gin.Context, appErr *apperror.AppError, toast notify.Toast) {
	_ = c.Error(appErr)
	c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Code, "notification": toast})
}
