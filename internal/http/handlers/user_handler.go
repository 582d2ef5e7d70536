package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/rewards-admin/internal/http/handlers/common"
	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/notify"
	"github.com/ignatzorin/rewards-admin/internal/pkg/apperror"
)

// UserRemover удаляет пользователя по подтверждению.
type UserRemover interface {
	DeleteUser(ctx context.Context, actor *models.Session, id uuid.UUID, confirmed bool) (notify.Toast, error)
}

// UserHandler действия над строками таблицы пользователей.
type UserHandler struct {
	actions UserRemover
}

// NewUserHandler создаёт хэндлер.
func NewUserHandler(actions UserRemover) *UserHandler {
	return &UserHandler{actions: actions}
}

type deleteUserRequest struct {
	Confirm bool `json:"confirm"`
}

// DeleteUser DELETE /api/users/:id, тело {"confirm": true}.
// Без подтверждения возвращает 428 и ничего не удаляет.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondAppError(c, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error()),
			notify.New("Error deleting user account.", notify.Error))
		return
	}

	var req deleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		common.RespondAppError(c, apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректное тело запроса"),
			notify.New("Error deleting user account.", notify.Error))
		return
	}

	actor, _ := common.CurrentSession(c)
	toast, err := h.actions.DeleteUser(c.Request.Context(), actor, id, req.Confirm)
	if err != nil {
		common.RespondAppError(c, actionError(err), toast)
		return
	}
	common.RespondNotification(c, http.StatusOK, toast)
}
