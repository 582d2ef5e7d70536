package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ignatzorin/rewards-admin/internal/models"
)

// ErrInvalidToken токен сессии не прошёл проверку.
var ErrInvalidToken = errors.New("token: недействительный токен сессии")

// sessionClaims клеймы cookie сессии администратора.
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager отвечает за выпуск и проверку JWT сессии.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// Issue подписывает токен для сессии. Срок жизни совпадает со сроком сессии.
func (m *TokenManager) Issue(session *models.Session) (string, error) {
	claims := sessionClaims{
		Email: session.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID.String(),
			ID:        session.ID.String(),
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse проверяет подпись и срок токена и возвращает идентификатор сессии.
func (m *TokenManager) Parse(token string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, m.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}

	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return sessionID, nil
}

func (m *TokenManager) key(*jwt.Token) (interface{}, error) {
	return m.secret, nil
}
