package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/notify"
	"github.com/ignatzorin/rewards-admin/internal/pkg/apperror"
	"github.com/ignatzorin/rewards-admin/internal/service"
)

type mockLoginer struct {
	mock.Mock
}

func (m *mockLoginer) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

type mockSessionEnder struct {
	mock.Mock
}

func (m *mockSessionEnder) EndSession(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func authRouter(login Loginer, sessions SessionEnder, session *models.Session) *gin.Engine {
	h := NewAuthHandler(login, sessions, testCookies)
	r := gin.New()
	r.Use(withContext(session))
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/logout", h.Logout)
	return r
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookies.Session {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login_SetsSessionCookie(t *testing.T) {
	login := new(mockLoginer)
	login.On("Login", mock.Anything, "admin@example.com", "secret").Return(&service.LoginResult{
		Notification:  notify.New("Welcome back, Admin!", notify.Success),
		Redirect:      service.DashboardPath,
		RedirectAfter: service.LoginRedirectDelay,
		Token:         "signed-token",
	}, nil)
	r := authRouter(login, new(mockSessionEnder), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, service.DashboardPath, body["redirect"])
	assert.EqualValues(t, 1200, body["redirect_after_ms"])
	assert.Equal(t, "Welcome back, Admin!", notificationOf(t, body)["message"])

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Equal(t, "signed-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	login.AssertExpectations(t)
}

func TestAuthHandler_Login_AcceptsForm(t *testing.T) {
	login := new(mockLoginer)
	login.On("Login", mock.Anything, "admin@example.com", "secret").Return(&service.LoginResult{
		Notification: notify.New("Welcome back, Admin!", notify.Success),
		Redirect:     service.DashboardPath,
		Token:        "signed-token",
	}, nil)
	r := authRouter(login, new(mockSessionEnder), nil)

	form := url.Values{"email": {"admin@example.com"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	login.AssertExpectations(t)
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		message  string
		status   int
		code     apperror.ErrorCode
		severity notify.Severity
	}{
		{"пустые поля", service.ErrEmptyCredentials, "Please fill in all fields.", http.StatusBadRequest, apperror.ErrCodeValidation, notify.Warning},
		{"неверный пароль", service.ErrLoginRejected, "Incorrect password.", http.StatusUnauthorized, apperror.ErrCodeUnauthorized, notify.Error},
		{"не администратор", service.ErrNotAdmin, "Access denied. Not an admin account.", http.StatusForbidden, apperror.ErrCodeForbidden, notify.Error},
		{"сбой провайдера", service.ErrLoginFailed, "Login failed. Please try again.", http.StatusUnauthorized, apperror.ErrCodeUnauthorized, notify.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			login := new(mockLoginer)
			login.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(&service.LoginResult{
				Notification: notify.New(tt.message, tt.severity),
			}, tt.err)
			r := authRouter(login, new(mockSessionEnder), nil)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
				strings.NewReader(`{"email":"a@b.co","password":"x"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, string(tt.code), body["error"])
			n := notificationOf(t, body)
			assert.Equal(t, tt.message, n["message"])
			assert.Equal(t, string(tt.severity), n["severity"])
			assert.Nil(t, sessionCookie(w))
		})
	}
}

func TestAuthHandler_Login_MalformedBody(t *testing.T) {
	login := new(mockLoginer)
	r := authRouter(login, new(mockSessionEnder), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please fill in all fields.", notificationOf(t, decode(t, w))["message"])
	login.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandler_Logout_EndsSession(t *testing.T) {
	session := &models.Session{ID: uuid.New()}
	sessions := new(mockSessionEnder)
	sessions.On("EndSession", mock.Anything, session.ID).Return(nil)
	r := authRouter(new(mockLoginer), sessions, session)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.LoginPath, decode(t, w)["redirect"])
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.MaxAge < 0)
	sessions.AssertExpectations(t)
}

func TestAuthHandler_Logout_WithoutSession(t *testing.T) {
	sessions := new(mockSessionEnder)
	r := authRouter(new(mockLoginer), sessions, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	sessions.AssertNotCalled(t, "EndSession", mock.Anything, mock.Anything)
}
