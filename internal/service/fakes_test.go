package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/repository"
)

// memoryUserRepo реализует IdentityRepository и AdminRecordReader для тестов.
type memoryUserRepo struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	sessions map[uuid.UUID]*models.Session

	getByIDErr     error
	getByEmailErr  error
	getByEmailHits int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		users:    make(map[uuid.UUID]*models.User),
		sessions: make(map[uuid.UUID]*models.Session),
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// addUser создаёт пользователя с паролем. isAdmin == nil означает отсутствие флага.
func (m *memoryUserRepo) addUser(email, password string, isAdmin *bool) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        strPtr(email),
		IsAdmin:      isAdmin,
		PasswordHash: strPtr(string(hash)),
		CreatedAt:    time.Now(),
	}
	m.mu.Lock()
	m.users[user.ID] = user
	m.mu.Unlock()
	return user
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getByEmailHits++
	if m.getByEmailErr != nil {
		return nil, m.getByEmailErr
	}
	for _, u := range m.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getByIDErr != nil {
		return nil, m.getByIDErr
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUserRepo) CreateSession(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session.CreatedAt = time.Now()
	m.sessions[session.ID] = session
	return nil
}

func (m *memoryUserRepo) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, repository.ErrSessionNotFound
}

func (m *memoryUserRepo) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memoryUserRepo) sessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *memoryUserRepo) emailLookups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getByEmailHits
}

// missingRecords не находит ни одной записи администратора.
type missingRecords struct{}

func (missingRecords) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, repository.ErrUserNotFound
}
