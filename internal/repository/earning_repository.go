package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/rewards-admin/internal/repository/common"
)

// EarningRepository читает журнал начислений. Консоль его не изменяет.
type EarningRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewEarningRepository(db *sqlx.DB, timeout time.Duration) *EarningRepository {
	return &EarningRepository{db: db, timeout: timeout}
}

// SumPointsSince суммирует начисления с timestamp >= since. Отсутствующие баллы считаются нулём.
func (r *EarningRepository) SumPointsSince(ctx context.Context, since time.Time) (int64, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	var sum int64
	err := r.db.GetContext(ctx, &sum, `SELECT COALESCE(SUM(COALESCE(points, 0)), 0) FROM earnings WHERE timestamp >= $1`, since)
	if err != nil {
		return 0, fmt.Errorf("earning repository: sum since %w", err)
	}
	return sum, nil
}
