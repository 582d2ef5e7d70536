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

// ErrUserNotFound возвращается, когда запись пользователя не найдена.
var ErrUserNotFound = fmt.Errorf("user not found: %w", common.ErrNotFound)

// ErrSessionNotFound возвращается, когда сессия не найдена или удалена.
var ErrSessionNotFound = fmt.Errorf("session not found: %w", common.ErrNotFound)

const userColumns = `id, full_name, email, is_admin, points, last_active, date_joined, password_hash, created_at`

// UserRepository отвечает за работу с таблицами users и user_sessions.
type UserRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewUserRepository создаёт экземпляр репозитория. timeout ограничивает каждый запрос.
func NewUserRepository(db *sqlx.DB, timeout time.Duration) *UserRepository {
	return &UserRepository{db: db, timeout: timeout}
}

// GetByID возвращает запись пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	user, err := common.GetByID[models.User](ctx, r.db, "users", id, ErrUserNotFound)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("user repository: %w", err)
	}
	return user, nil
}

// GetByEmail возвращает пользователя по email без учёта регистра.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}
	return &user, nil
}

// CountAll возвращает общее число пользователей.
func (r *UserRepository) CountAll(ctx context.Context) (int64, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := common.Count(ctx, r.db, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, fmt.Errorf("user repository: count all %w", err)
	}
	return n, nil
}

// CountActiveSince возвращает число пользователей с last_active >= since.
func (r *UserRepository) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := common.Count(ctx, r.db, `SELECT COUNT(*) FROM users WHERE last_active >= $1`, since)
	if err != nil {
		return 0, fmt.Errorf("user repository: count active %w", err)
	}
	return n, nil
}

// ListInStoreOrder возвращает всех пользователей в порядке поступления в хранилище.
func (r *UserRepository) ListInStoreOrder(ctx context.Context) ([]models.User, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	var users []models.User
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("user repository: list %w", err)
	}
	return users, nil
}

// ListPoints возвращает баланс каждого пользователя; nil означает отсутствующее поле.
func (r *UserRepository) ListPoints(ctx context.Context) ([]*int64, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	var points []sql.NullInt64
	if err := r.db.SelectContext(ctx, &points, `SELECT points FROM users`); err != nil {
		return nil, fmt.Errorf("user repository: list points %w", err)
	}

	out := make([]*int64, len(points))
	for i, p := range points {
		if p.Valid {
			v := p.Int64
			out[i] = &v
		}
	}
	return out, nil
}

// TopByPoints возвращает limit пользователей с наибольшим балансом.
func (r *UserRepository) TopByPoints(ctx context.Context, limit int) ([]models.User, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	var users []models.User
	query := `SELECT ` + userColumns + ` FROM users ORDER BY points DESC NULLS LAST, created_at LIMIT $1`
	if err := r.db.SelectContext(ctx, &users, query, limit); err != nil {
		return nil, fmt.Errorf("user repository: top by points %w", err)
	}
	return users, nil
}

// Delete удаляет пользователя. Удаление отсутствующей записи не считается ошибкой.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("user repository: delete %w", err)
	}
	return nil
}

// CreateSession сохраняет новую сессию.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO user_sessions (id, user_id, email, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		session.ID, session.UserID, session.Email, session.ExpiresAt,
	).Scan(&session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}
	return nil
}

// GetSession возвращает сессию по идентификатору.
func (r *UserRepository) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	session, err := common.GetByID[models.Session](ctx, r.db, "user_sessions", id, ErrSessionNotFound)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("user repository: %w", err)
	}
	return session, nil
}

// DeleteSession удаляет сессию. Отсутствующая сессия не считается ошибкой.
func (r *UserRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}
	return nil
}

// DeleteExpiredSessions удаляет сессии с истёкшим сроком.
func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("user repository: delete expired sessions %w", err)
	}
	return res.RowsAffected()
}
