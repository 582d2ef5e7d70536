package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/rewards-admin/internal/models"
)

const (
	updateStatusSQL = `UPDATE withdrawals SET status`
	selectByIDSQL   = `SELECT (.+) FROM withdrawals WHERE id`
)

var withdrawalRowColumns = []string{"id", "email", "type", "amount", "details", "status", "requested_at", "created_at"}

func newWithdrawalRepo(t *testing.T) (*WithdrawalRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewWithdrawalRepository(sqlx.NewDb(conn, "postgres"), time.Second), mock
}

func withdrawalRow(id uuid.UUID, status string) *sqlmock.Rows {
	return sqlmock.NewRows(withdrawalRowColumns).
		AddRow(id.String(), nil, nil, nil, nil, status, nil, time.Now())
}

func TestUpdateStatusIfPending_UpdatesPendingRow(t *testing.T) {
	repo, mock := newWithdrawalRepo(t)
	id := uuid.New()

	mock.ExpectExec(updateStatusSQL).
		WithArgs(id.String(), models.WithdrawalStatusCompleted).
		WillReturnResult(sqlmock.NewResult(0, 1))

	status, err := repo.UpdateStatusIfPending(context.Background(), id, models.WithdrawalStatusCompleted)

	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusCompleted, status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusIfPending_SameStatusIsIdempotent(t *testing.T) {
	repo, mock := newWithdrawalRepo(t)
	id := uuid.New()

	mock.ExpectExec(updateStatusSQL).
		WithArgs(id.String(), models.WithdrawalStatusCompleted).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectByIDSQL).
		WithArgs(id.String()).
		WillReturnRows(withdrawalRow(id, models.WithdrawalStatusCompleted))

	status, err := repo.UpdateStatusIfPending(context.Background(), id, models.WithdrawalStatusCompleted)

	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusCompleted, status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusIfPending_OtherFinalStatusConflicts(t *testing.T) {
	repo, mock := newWithdrawalRepo(t)
	id := uuid.New()

	mock.ExpectExec(updateStatusSQL).
		WithArgs(id.String(), models.WithdrawalStatusCompleted).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectByIDSQL).
		WithArgs(id.String()).
		WillReturnRows(withdrawalRow(id, models.WithdrawalStatusCanceled))

	status, err := repo.UpdateStatusIfPending(context.Background(), id, models.WithdrawalStatusCompleted)

	assert.ErrorIs(t, err, ErrWithdrawalFinal)
	assert.Equal(t, models.WithdrawalStatusCanceled, status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusIfPending_MissingRow(t *testing.T) {
	repo, mock := newWithdrawalRepo(t)
	id := uuid.New()

	mock.ExpectExec(updateStatusSQL).
		WithArgs(id.String(), models.WithdrawalStatusCanceled).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectByIDSQL).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(withdrawalRowColumns))

	_, err := repo.UpdateStatusIfPending(context.Background(), id, models.WithdrawalStatusCanceled)

	assert.ErrorIs(t, err, ErrWithdrawalNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusIfPending_StoreFailure(t *testing.T) {
	repo, mock := newWithdrawalRepo(t)
	id := uuid.New()
	storeErr := errors.New("connection reset")

	mock.ExpectExec(updateStatusSQL).
		WithArgs(id.String(), models.WithdrawalStatusCompleted).
		WillReturnError(storeErr)

	_, err := repo.UpdateStatusIfPending(context.Background(), id, models.WithdrawalStatusCompleted)

	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrWithdrawalFinal)
	assert.NoError(t, mock.ExpectationsWereMet())
}
