package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/rewards-admin/internal/logger"
	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/notify"
	"github.com/ignatzorin/rewards-admin/internal/repository"
	"github.com/ignatzorin/rewards-admin/internal/validation"
)

// Ошибки входа, которые транспорт переводит в HTTP статусы.
var (
	ErrEmptyCredentials = errors.New("login: пустые поля")
	ErrLoginRejected    = errors.New("login: учётные данные отклонены")
	ErrNotAdmin         = errors.New("login: нет прав администратора")
	ErrLoginFailed      = errors.New("login: внутренняя ошибка")
)

// LoginRedirectDelay пауза перед переходом в консоль, чтобы администратор увидел приветствие.
const LoginRedirectDelay = 1200 * time.Millisecond

// CredentialVerifier зависимости LoginService от провайдера личности.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, email, password string) (*models.Session, error)
	IssueToken(session *models.Session) (string, error)
	EndSession(ctx context.Context, sessionID uuid.UUID) error
}

// LoginResult итог попытки входа. Notification заполнено всегда.
type LoginResult struct {
	Notification  notify.Toast
	Redirect      string
	RedirectAfter time.Duration
	Session       *models.Session
	Token         string
}

// LoginService проверяет, что входящий является администратором.
type LoginService struct {
	identity CredentialVerifier
	users    AdminRecordReader
}

// NewLoginService создаёт сервис входа.
func NewLoginService(identity CredentialVerifier, users AdminRecordReader) *LoginService {
	return &LoginService{identity: identity, users: users}
}

// Login выполняет вход. Пустые поля отклоняются без обращения к провайдеру.
func (s *LoginService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if validation.IsBlank(email) || validation.IsBlank(password) {
		return rejected("Please fill in all fields.", notify.Warning), ErrEmptyCredentials
	}

	session, err := s.identity.VerifyCredentials(ctx, email, password)
	if err != nil {
		return s.identityFailure(err)
	}

	log := logger.Entry("login").WithField("session_id", session.ID)

	record, err := s.users.GetByID(ctx, session.UserID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		s.endSession(ctx, session)
		return rejected("No admin record found.", notify.Error), ErrNotAdmin
	case err != nil:
		log.WithError(err).Error("не удалось загрузить запись администратора")
		s.endSession(ctx, session)
		return rejected("Login failed. Please try again.", notify.Error), ErrLoginFailed
	case !record.HasAdminFlag():
		s.endSession(ctx, session)
		return rejected("Access denied. Not an admin account.", notify.Error), ErrNotAdmin
	}

	token, err := s.identity.IssueToken(session)
	if err != nil {
		log.WithError(err).Error("не удалось подписать токен сессии")
		s.endSession(ctx, session)
		return rejected("Login failed. Please try again.", notify.Error), ErrLoginFailed
	}

	log.Info("администратор вошёл в консоль")
	return &LoginResult{
		Notification:  notify.New("Welcome back, Admin!", notify.Success),
		Redirect:      DashboardPath,
		RedirectAfter: LoginRedirectDelay,
		Session:       session,
		Token:         token,
	}, nil
}

func (s *LoginService) identityFailure(err error) (*LoginResult, error) {
	switch {
	case errors.Is(err, ErrInvalidEmail):
		return rejected("Invalid email address.", notify.Error), ErrLoginRejected
	case errors.Is(err, ErrWrongPassword):
		return rejected("Incorrect password.", notify.Error), ErrLoginRejected
	case errors.Is(err, ErrAccountNotFound):
		return rejected("Admin account not found.", notify.Error), ErrLoginRejected
	default:
		logger.Entry("login").WithError(err).Error("ошибка провайдера личности")
		return rejected("Login failed. Please try again.", notify.Error), ErrLoginFailed
	}
}

func (s *LoginService) endSession(ctx context.Context, session *models.Session) {
	if err := s.identity.EndSession(ctx, session.ID); err != nil {
		logger.Entry("login").WithError(err).WithField("session_id", session.ID).Warn("не удалось завершить сессию")
	}
}

func rejected(message string, severity notify.Severity) *LoginResult {
	return &LoginResult{Notification: notify.New(message, severity)}
}
