package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/rewards-admin/internal/logger"
	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/repository"
	"github.com/ignatzorin/rewards-admin/internal/validation"
)

// Ошибки проверки учётных данных.
var (
	ErrInvalidEmail    = errors.New("identity: некорректный email")
	ErrWrongPassword   = errors.New("identity: неверный пароль")
	ErrAccountNotFound = errors.New("identity: учётная запись не найдена")
	ErrNoSession       = errors.New("identity: нет активной сессии")
)

// IdentityRepository описывает зависимости IdentityService от слоя хранилища.
type IdentityRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

// SessionEventKind вид изменения состояния аутентификации.
type SessionEventKind int

const (
	SessionStarted SessionEventKind = iota + 1
	SessionEnded
)

// SessionEvent событие смены состояния сессии.
type SessionEvent struct {
	Kind      SessionEventKind
	SessionID uuid.UUID
	UserID    uuid.UUID
}

// IdentityService выдаёт и завершает сессии администраторов.
type IdentityService struct {
	repo   IdentityRepository
	tokens *TokenManager
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	nextID    int
	listeners map[int]func(SessionEvent)
}

// NewIdentityService создаёт сервис сессий.
func NewIdentityService(repo IdentityRepository, tokens *TokenManager, ttl time.Duration) *IdentityService {
	return &IdentityService{
		repo:      repo,
		tokens:    tokens,
		ttl:       ttl,
		now:       time.Now,
		listeners: make(map[int]func(SessionEvent)),
	}
}

// VerifyCredentials проверяет email и пароль и открывает новую сессию.
func (s *IdentityService) VerifyCredentials(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.TrimSpace(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, ErrInvalidEmail
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("identity: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}

	session := &models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		Email:     strings.ToLower(email),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}

	s.emit(SessionEvent{Kind: SessionStarted, SessionID: session.ID, UserID: session.UserID})
	return session, nil
}

// IssueToken подписывает cookie токен для сессии.
func (s *IdentityService) IssueToken(session *models.Session) (string, error) {
	return s.tokens.Issue(session)
}

// ResolveSession возвращает активную сессию по токену cookie.
func (s *IdentityService) ResolveSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	sessionID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrNoSession
	}

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("identity: %w", err)
	}

	if session.Expired(s.now()) {
		if err := s.EndSession(ctx, session.ID); err != nil {
			logger.Entry("identity").WithError(err).Warn("не удалось удалить истёкшую сессию")
		}
		return nil, ErrNoSession
	}

	return session, nil
}

// EndSession завершает сессию. Повторное завершение не считается ошибкой.
func (s *IdentityService) EndSession(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	s.emit(SessionEvent{Kind: SessionEnded, SessionID: sessionID})
	return nil
}

// OnSessionChange подписывает fn на события сессий и возвращает функцию отписки.
func (s *IdentityService) OnSessionChange(fn func(SessionEvent)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *IdentityService) emit(event SessionEvent) {
	s.mu.RLock()
	listeners := make([]func(SessionEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}
}
