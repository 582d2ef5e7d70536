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

// DenyReason причина отказа в доступе к консоли.
type DenyReason string

const (
	ReasonNoSession     DenyReason = "no_session"
	ReasonRecordMissing DenyReason = "record_missing"
	ReasonNotAdmin      DenyReason = "not_admin"
	ReasonLookupFailed  DenyReason = "lookup_failed"
)

const (
	LoginPath     = "/login"
	LandingPath   = "/"
	DashboardPath = "/dashboard"
)

// Decision итог проверки доступа: Granted или Denied.
type Decision interface {
	decision()
}

// Granted доступ разрешён. Record запись администратора на момент проверки.
type Granted struct {
	Record *models.User
}

// Denied доступ запрещён.
type Denied struct {
	Reason     DenyReason
	Redirect   string
	EndSession bool
	Message    string
	Severity   notify.Severity
}

func (Granted) decision() {}
func (Denied) decision()  {}

// AdminRecordReader читает запись администратора.
type AdminRecordReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthorizationGate проверяет флаг администратора при каждом событии сессии.
// Результат не кешируется: флаг могут снять в любой момент.
type AuthorizationGate struct {
	users AdminRecordReader
}

// NewAuthorizationGate создаёт проверку доступа.
func NewAuthorizationGate(users AdminRecordReader) *AuthorizationGate {
	return &AuthorizationGate{users: users}
}

// Evaluate решает, может ли сессия видеть консоль. Любая неясность означает отказ.
func (g *AuthorizationGate) Evaluate(ctx context.Context, session *models.Session) Decision {
	if session == nil {
		return Denied{
			Reason:   ReasonNoSession,
			Redirect: LoginPath,
			Message:  "Access denied. Please log in as admin.",
			Severity: notify.Warning,
		}
	}

	record, err := g.users.GetByID(ctx, session.UserID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return deniedAdminsOnly(ReasonRecordMissing)
	case err != nil:
		logger.Entry("authorization").WithError(err).
			WithField("session_id", session.ID).
			Error("не удалось загрузить запись администратора")
		return Denied{
			Reason:   ReasonLookupFailed,
			Redirect: LoginPath,
			Message:  "Login failed. Please try again.",
			Severity: notify.Error,
		}
	case !record.HasAdminFlag():
		return deniedAdminsOnly(ReasonNotAdmin)
	}

	return Granted{Record: record}
}

func deniedAdminsOnly(reason DenyReason) Denied {
	return Denied{
		Reason:     reason,
		Redirect:   LandingPath,
		EndSession: true,
		Message:    "Access denied. Admins only.",
		Severity:   notify.Error,
	}
}
