package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized         ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden            ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest           ErrorCode = "BAD_REQUEST"
	ErrCodeConflict             ErrorCode = "CONFLICT"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation           ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	ErrCodePreconditionRequired ErrorCode = "CONFIRMATION_REQUIRED"
	ErrCodeTooManyRequests      ErrorCode = "TOO_MANY_REQUESTS"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// WithCause возвращает копию ошибки с причиной. Сами эталонные ошибки не меняются.
func (e *AppError) WithCause(err error) *AppError {
	c := *e
	c.Cause = err
	return &c
}

// As извлекает AppError из цепочки. Неизвестная ошибка становится внутренней.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrCodeInternal, "внутренняя ошибка сервера")
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodePreconditionRequired:
		return http.StatusPreconditionRequired
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrUnauthorized         = New(ErrCodeUnauthorized, "требуется вход администратора")
	ErrForbidden            = New(ErrCodeForbidden, "только для администраторов")
	ErrInvalidCredentials   = New(ErrCodeUnauthorized, "неверные учетные данные")
	ErrConfirmationRequired = New(ErrCodePreconditionRequired, "требуется подтверждение")
	ErrTooManyRequests      = New(ErrCodeTooManyRequests, "слишком много запросов, попробуйте позже")
)
