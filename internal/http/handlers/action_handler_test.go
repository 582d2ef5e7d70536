package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/notify"
	"github.com/ignatzorin/rewards-admin/internal/pkg/apperror"
	"github.com/ignatzorin/rewards-admin/internal/service"
)

type mockActions struct {
	mock.Mock
}

func (m *mockActions) DeleteUser(ctx context.Context, actor *models.Session, id uuid.UUID, confirmed bool) (notify.Toast, error) {
	args := m.Called(ctx, actor, id, confirmed)
	return args.Get(0).(notify.Toast), args.Error(1)
}

func (m *mockActions) SetWithdrawalStatus(ctx context.Context, id uuid.UUID, status string) (notify.Toast, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(notify.Toast), args.Error(1)
}

func actionRouter(actions *mockActions, session *models.Session) *gin.Engine {
	users := NewUserHandler(actions)
	withdrawals := NewWithdrawalHandler(actions)
	r := gin.New()
	r.Use(withContext(session))
	r.DELETE("/api/users/:id", users.DeleteUser)
	r.POST("/api/withdrawals/:id/status", withdrawals.SetStatus)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserHandler_DeleteUser_Confirmed(t *testing.T) {
	session := &models.Session{ID: uuid.New(), UserID: uuid.New()}
	target := uuid.New()
	actions := new(mockActions)
	actions.On("DeleteUser", mock.Anything, session, target, true).
		Return(notify.New("User account permanently deleted.", notify.Success), nil)

	w := doJSON(actionRouter(actions, session), http.MethodDelete, "/api/users/"+target.String(), `{"confirm":true}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User account permanently deleted.", notificationOf(t, decode(t, w))["message"])
	actions.AssertExpectations(t)
}

func TestUserHandler_DeleteUser_EmptyBodyIsUnconfirmed(t *testing.T) {
	session := &models.Session{ID: uuid.New(), UserID: uuid.New()}
	target := uuid.New()
	actions := new(mockActions)
	actions.On("DeleteUser", mock.Anything, session, target, false).
		Return(notify.New("Please confirm the deletion first.", notify.Warning), service.ErrConfirmationRequired)

	w := doJSON(actionRouter(actions, session), http.MethodDelete, "/api/users/"+target.String(), "")

	assert.Equal(t, http.StatusPreconditionRequired, w.Code)
	assert.Equal(t, string(apperror.ErrCodePreconditionRequired), decode(t, w)["error"])
	actions.AssertExpectations(t)
}

func TestUserHandler_DeleteUser_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"собственная запись", service.ErrSelfDelete, http.StatusConflict},
		{"ошибка хранилища", service.ErrStoreWrite, http.StatusInternalServerError},
		{"неизвестная ошибка", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions := new(mockActions)
			actions.On("DeleteUser", mock.Anything, mock.Anything, mock.Anything, true).
				Return(notify.New("Error deleting user account.", notify.Error), tt.err)

			w := doJSON(actionRouter(actions, &models.Session{ID: uuid.New()}), http.MethodDelete,
				"/api/users/"+uuid.NewString(), `{"confirm":true}`)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "Error deleting user account.", notificationOf(t, decode(t, w))["message"])
		})
	}
}

func TestUserHandler_DeleteUser_InvalidID(t *testing.T) {
	actions := new(mockActions)

	w := doJSON(actionRouter(actions, &models.Session{ID: uuid.New()}), http.MethodDelete, "/api/users/invalid-uuid", `{"confirm":true}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	actions.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWithdrawalHandler_SetStatus(t *testing.T) {
	id := uuid.New()
	actions := new(mockActions)
	actions.On("SetWithdrawalStatus", mock.Anything, id, models.WithdrawalStatusCompleted).
		Return(notify.New("Withdrawal completed", notify.Success), nil)

	w := doJSON(actionRouter(actions, &models.Session{ID: uuid.New()}), http.MethodPost,
		"/api/withdrawals/"+id.String()+"/status", `{"status":"completed"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Withdrawal completed", notificationOf(t, decode(t, w))["message"])
	actions.AssertExpectations(t)
}

func TestWithdrawalHandler_SetStatus_RejectsUnknownStatus(t *testing.T) {
	actions := new(mockActions)

	w := doJSON(actionRouter(actions, &models.Session{ID: uuid.New()}), http.MethodPost,
		"/api/withdrawals/"+uuid.NewString()+"/status", `{"status":"pending"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, string(apperror.ErrCodeValidation), body["error"])
	fields := body["fields"].(map[string]any)
	assert.Equal(t, "Status must be completed or canceled", fields["status"])
	assert.Equal(t, "Error updating withdrawal status", notificationOf(t, body)["message"])
	actions.AssertNotCalled(t, "SetWithdrawalStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestWithdrawalHandler_SetStatus_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"уже обработана", service.ErrWithdrawalFinal, http.StatusConflict},
		{"не найдена", service.ErrWithdrawalMissing, http.StatusNotFound},
		{"ошибка хранилища", service.ErrStoreWrite, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions := new(mockActions)
			actions.On("SetWithdrawalStatus", mock.Anything, mock.Anything, models.WithdrawalStatusCanceled).
				Return(notify.New("Error updating withdrawal status", notify.Error), tt.err)

			w := doJSON(actionRouter(actions, &models.Session{ID: uuid.New()}), http.MethodPost,
				"/api/withdrawals/"+uuid.NewString()+"/status", `{"status":"canceled"}`)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "Error updating withdrawal status", notificationOf(t, decode(t, w))["message"])
		})
	}
}
