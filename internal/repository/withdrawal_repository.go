package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/repository/common"
)

var ErrWithdrawalNotFound = fmt.Errorf("withdrawal not found: %w", common.ErrNotFound)

// ErrWithdrawalFinal возвращается, когда заявка уже не в статусе pending.
var ErrWithdrawalFinal = fmt.Errorf("withdrawal already final: %w", common.ErrConflict)

const withdrawalColumns = `id, email, type, amount, details, status, requested_at, created_at`

type WithdrawalRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewWithdrawalRepository(db *sqlx.DB, timeout time.Duration) *WithdrawalRepository {
	return &WithdrawalRepository{db: db, timeout: timeout}
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	var w models.Withdrawal
	err := r.db.GetContext(ctx, &w, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("withdrawal repository: get %w", err)
	}
	return &w, nil
}

// ListAll возвращает все заявки без сортировки: порядок задаёт таблица консоли.
func (r *WithdrawalRepository) ListAll(ctx context.Context) ([]models.Withdrawal, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	var withdrawals []models.Withdrawal
	if err := r.db.SelectContext(ctx, &withdrawals, `SELECT `+withdrawalColumns+` FROM withdrawals`); err != nil {
		return nil, fmt.Errorf("withdrawal repository: list %w", err)
	}
	return withdrawals, nil
}

func (r *WithdrawalRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := common.Count(ctx, r.db, `SELECT COUNT(*) FROM withdrawals WHERE status = $1`, status)
	if err != nil {
		return 0, fmt.Errorf("withdrawal repository: count by status %w", err)
	}
	return n, nil
}

// UpdateStatusIfPending меняет статус только у заявки в статусе pending.
// Если заявка уже в целевом статусе, возвращает nil.
// Если заявка в другом финальном статусе, возвращает ErrWithdrawalFinal и текущий статус.
func (r *WithdrawalRepository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status string) (string, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE withdrawals SET status = $2
		WHERE id = $1 AND status = 'pending'
	`, id, status)
	if err != nil {
		return "", fmt.Errorf("withdrawal repository: update status %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("withdrawal repository: update status %w", err)
	}
	if affected == 1 {
		return status, nil
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if current.Status == status {
		return current.Status, nil
	}
	return current.Status, ErrWithdrawalFinal
}
