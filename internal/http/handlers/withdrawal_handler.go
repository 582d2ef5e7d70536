package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/rewards-admin/internal/http/handlers/common"
	"github.com/ignatzorin/rewards-admin/internal/notify"
	"github.com/ignatzorin/rewards-admin/internal/pkg/apperror"
	"github.com/ignatzorin/rewards-admin/internal/validation"
)

// WithdrawalStatusSetter меняет статус заявки.
type WithdrawalStatusSetter interface {
	SetWithdrawalStatus(ctx context.Context, id uuid.UUID, status string) (notify.Toast, error)
}

type WithdrawalHandler struct {
	actions WithdrawalStatusSetter
}

func NewWithdrawalHandler(actions WithdrawalStatusSetter) *WithdrawalHandler {
	return &WithdrawalHandler{actions: actions}
}

type withdrawalStatusRequest struct {
	Status string `json:"status" binding:"required,withdrawal_target"`
}

// SetStatus POST /api/withdrawals/:id/status — кнопки Pay и Reject.
func (h *WithdrawalHandler) SetStatus(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondAppError(c, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error()),
			notify.New("Error updating withdrawal status", notify.Error))
		return
	}

	var req withdrawalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.Wrap(err, apperror.ErrCodeValidation, "некорректный статус"))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":        apperror.ErrCodeValidation,
			"fields":       validation.FieldErrors(err),
			"notification": notify.New("Error updating withdrawal status", notify.Error),
		})
		return
	}

	toast, err := h.actions.SetWithdrawalStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		common.RespondAppError(c, actionError(err), toast)
		return
	}
	common.RespondNotification(c, http.StatusOK, toast)
}
