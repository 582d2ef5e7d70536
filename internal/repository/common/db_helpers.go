package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// WithTimeout ограничивает вызов хранилища сроком d. При d <= 0 возвращает ctx как есть.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// GetByID - универсальная функция для получения сущности по ID
func GetByID[T any](ctx context.Context, db sqlx.QueryerContext, table string, id interface{}, notFoundErr error) (*T, error) {
	var entity T
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = $1", table)

	if err := sqlx.GetContext(ctx, db, &entity, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundErr
		}
		return nil, fmt.Errorf("get by id from %s: %w", table, err)
	}

	return &entity, nil
}

// Count выполняет SELECT COUNT(*) с произвольным условием.
func Count(ctx context.Context, db sqlx.QueryerContext, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, db, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}
