package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/rewards-admin/internal/logger"
	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/notify"
	"github.com/ignatzorin/rewards-admin/internal/repository"
)

// Ошибки действий над строками таблиц.
var (
	ErrConfirmationRequired = errors.New("action: требуется подтверждение")
	ErrSelfDelete           = errors.New("action: нельзя удалить собственную запись")
	ErrInvalidStatus        = errors.New("action: недопустимый целевой статус")
	ErrWithdrawalFinal      = errors.New("action: заявка уже обработана")
	ErrWithdrawalMissing    = errors.New("action: заявка не найдена")
	ErrStoreWrite           = errors.New("action: ошибка записи в хранилище")
)

// UserDeleter удаляет записи пользователей.
type UserDeleter interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

// WithdrawalStatusWriter меняет статус заявки, пока она в pending.
type WithdrawalStatusWriter interface {
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status string) (string, error)
}

// ChangePublisher сообщает живым панелям об изменении коллекции.
type ChangePublisher interface {
	Publish(collection string)
}

// ActionService выполняет действия администратора над строками таблиц.
// Локальное состояние панелей не трогается: их перерисует подписка.
type ActionService struct {
	users       UserDeleter
	withdrawals WithdrawalStatusWriter
	changes     ChangePublisher
}

// NewActionService создаёт сервис действий.
func NewActionService(users UserDeleter, withdrawals WithdrawalStatusWriter, changes ChangePublisher) *ActionService {
	return &ActionService{users: users, withdrawals: withdrawals, changes: changes}
}

// DeleteUser безвозвратно удаляет пользователя после явного подтверждения.
// Уведомление возвращается всегда, ошибка только при неудаче.
func (s *ActionService) DeleteUser(ctx context.Context, actor *models.Session, id uuid.UUID, confirmed bool) (notify.Toast, error) {
	if !confirmed {
		return notify.New("Please confirm the deletion first.", notify.Warning), ErrConfirmationRequired
	}
	if actor != nil && actor.UserID == id {
		return notify.New("You cannot delete your own admin account.", notify.Warning), ErrSelfDelete
	}

	log := logger.Entry("actions").WithField("user_id", id)
	if err := s.users.Delete(ctx, id); err != nil {
		log.WithError(err).Error("не удалось удалить пользователя")
		return notify.New("Error deleting user account.", notify.Error), ErrStoreWrite
	}

	log.Info("пользователь удалён")
	s.publish(models.CollectionUsers)
	return notify.New("User account permanently deleted.", notify.Success), nil
}

// SetWithdrawalStatus переводит заявку из pending в completed или canceled.
// Повторная установка того же статуса считается успехом.
func (s *ActionService) SetWithdrawalStatus(ctx context.Context, id uuid.UUID, status string) (notify.Toast, error) {
	if _, ok := models.WithdrawalTargetStatuses[status]; !ok {
		return notify.New("Error updating withdrawal status", notify.Error), ErrInvalidStatus
	}

	log := logger.Entry("actions").WithField("withdrawal_id", id).WithField("status", status)

	current, err := s.withdrawals.UpdateStatusIfPending(ctx, id, status)
	switch {
	case errors.Is(err, repository.ErrWithdrawalFinal):
		log.WithField("current_status", current).Warn("заявка уже обработана")
		return notify.New("Withdrawal already "+current, notify.Warning), ErrWithdrawalFinal
	case errors.Is(err, repository.ErrWithdrawalNotFound):
		log.Warn("заявка не найдена")
		return notify.New("Error updating withdrawal status", notify.Error), ErrWithdrawalMissing
	case err != nil:
		log.WithError(err).Error("не удалось обновить статус заявки")
		return notify.New("Error updating withdrawal status", notify.Error), ErrStoreWrite
	}

	log.Info("статус заявки обновлён")
	s.publish(models.CollectionWithdrawals)
	return notify.New("Withdrawal "+status, notify.Success), nil
}

func (s *ActionService) publish(collection string) {
	if s.changes != nil {
		s.changes.Publish(collection)
	}
}
