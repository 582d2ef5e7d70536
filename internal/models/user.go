package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает учётную запись пользователя платформы.
// Для администратора эта же запись служит AdminRecord: доступ к консоли
// определяется флагом IsAdmin.
//
// Большинство полей nullable: документы приходят из мобильного клиента,
// и отсутствующее поле должно отличаться от нулевого значения.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	FullName     *string    `db:"full_name" json:"full_name,omitempty"`
	Email        *string    `db:"email" json:"email,omitempty"`
	IsAdmin      *bool      `db:"is_admin" json:"is_admin,omitempty"`
	Points       *int64     `db:"points" json:"points,omitempty"`
	LastActive   *time.Time `db:"last_active" json:"last_active,omitempty"`
	DateJoined   *time.Time `db:"date_joined" json:"date_joined,omitempty"`
	PasswordHash *string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// HasAdminFlag возвращает true только при явно выставленном флаге is_admin = true.
func (u *User) HasAdminFlag() bool {
	return u != nil && u.IsAdmin != nil && *u.IsAdmin
}

// PointsOrZero возвращает баланс баллов, отсутствующее значение считается нулём.
func (u *User) PointsOrZero() int64 {
	if u == nil || u.Points == nil {
		return 0
	}
	return *u.Points
}

// Session представляет аутентифицированную сессию администратора.
type Session struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Email     string    `db:"email" json:"email"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired сообщает, истёк ли срок жизни сессии на момент now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}
