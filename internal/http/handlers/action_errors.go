package handlers

import (
	"errors"

	"github.com/ignatzorin/rewards-admin/internal/pkg/apperror"
	"github.com/ignatzorin/rewards-admin/internal/service"
)

// actionError сопоставляет ошибку действия над строкой с HTTP статусом.
func actionError(err error) *apperror.AppError {
	switch {
	case errors.Is(err, service.ErrConfirmationRequired):
		return apperror.ErrConfirmationRequired.WithCause(err)
	case errors.Is(err, service.ErrSelfDelete):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "нельзя удалить собственную запись")
	case errors.Is(err, service.ErrInvalidStatus):
		return apperror.Wrap(err, apperror.ErrCodeValidation, "недопустимый статус")
	case errors.Is(err, service.ErrWithdrawalFinal):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "заявка уже обработана")
	case errors.Is(err, service.ErrWithdrawalMissing):
		return apperror.Wrap(err, apperror.ErrCodeNotFound, "заявка не найдена")
	default:
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка записи в хранилище")
	}
}

// loginError сопоставляет ошибку входа с HTTP статусом.
func loginError(err error) *apperror.AppError {
	switch {
	case errors.Is(err, service.ErrEmptyCredentials):
		return apperror.Wrap(err, apperror.ErrCodeValidation, "пустые поля")
	case errors.Is(err, service.ErrNotAdmin):
		return apperror.ErrForbidden.WithCause(err)
	default:
		return apperror.ErrInvalidCredentials.WithCause(err)
	}
}
