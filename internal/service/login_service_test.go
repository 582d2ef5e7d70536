package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/rewards-admin/internal/notify"
)

func newTestLogin(repo *memoryUserRepo) *LoginService {
	return NewLoginService(newTestIdentity(repo), repo)
}

func TestLoginService_EmptyFieldsSkipIdentity(t *testing.T) {
	inputs := []struct{ email, password string }{
		{"", "pw"},
		{"admin@rewards.io", ""},
		{"   ", "pw"},
		{"admin@rewards.io", "  "},
		{"", ""},
	}

	for _, in := range inputs {
		repo := newMemoryUserRepo()
		svc := newTestLogin(repo)

		res, err := svc.Login(context.Background(), in.email, in.password)

		assert.ErrorIs(t, err, ErrEmptyCredentials)
		assert.Equal(t, "Please fill in all fields.", res.Notification.Message)
		assert.Equal(t, notify.Warning, res.Notification.Severity)
		assert.Equal(t, 0, repo.emailLookups(), "identity provider must not be called")
	}
}

func TestLoginService_Success(t *testing.T) {
	repo := newMemoryUserRepo()
	repo.addUser("admin@rewards.io", "s3cret", boolPtr(true))
	svc := newTestLogin(repo)

	res, err := svc.Login(context.Background(), " admin@rewards.io ", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, "Welcome back, Admin!", res.Notification.Message)
	assert.Equal(t, notify.Success, res.Notification.Severity)
	assert.Equal(t, DashboardPath, res.Redirect)
	assert.Equal(t, 1200*time.Millisecond, res.RedirectAfter)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, 1, repo.sessionCount())
}

func TestLoginService_Failures(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		isAdmin  *bool
		wantErr  error
		wantMsg  string
	}{
		{"некорректный email", "admin-at-rewards", "s3cret", boolPtr(true), ErrLoginRejected, "Invalid email address."},
		{"неверный пароль", "admin@rewards.io", "nope", boolPtr(true), ErrLoginRejected, "Incorrect password."},
		{"нет учётной записи", "ghost@rewards.io", "s3cret", boolPtr(true), ErrLoginRejected, "Admin account not found."},
		{"не администратор", "admin@rewards.io", "s3cret", boolPtr(false), ErrNotAdmin, "Access denied. Not an admin account."},
		{"флаг отсутствует", "admin@rewards.io", "s3cret", nil, ErrNotAdmin, "Access denied. Not an admin account."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryUserRepo()
			repo.addUser("admin@rewards.io", "s3cret", tt.isAdmin)
			svc := newTestLogin(repo)

			res, err := svc.Login(context.Background(), tt.email, tt.password)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantMsg, res.Notification.Message)
			assert.Equal(t, notify.Error, res.Notification.Severity)
			assert.Empty(t, res.Token)
			assert.Equal(t, 0, repo.sessionCount(), "denied login must not leave a session")
		})
	}
}

func TestLoginService_ProviderFailure(t *testing.T) {
	repo := newMemoryUserRepo()
	repo.getByEmailErr = errors.New("connection reset")
	svc := newTestLogin(repo)

	res, err := svc.Login(context.Background(), "admin@rewards.io", "s3cret")

	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.Equal(t, "Login failed. Please try again.", res.Notification.Message)
}

func TestLoginService_MissingRecordAfterVerification(t *testing.T) {
	repo := newMemoryUserRepo()
	repo.addUser("admin@rewards.io", "s3cret", boolPtr(true))
	// Учётные данные есть, а документ администратора пропал.
	svc := NewLoginService(newTestIdentity(repo), missingRecords{})

	res, err := svc.Login(context.Background(), "admin@rewards.io", "s3cret")

	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.Equal(t, "No admin record found.", res.Notification.Message)
	assert.Equal(t, 0, repo.sessionCount())
}
