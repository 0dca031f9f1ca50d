package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"giftex/internal/user/models"
	id "giftex/pkg/domain"
	"giftex/pkg/platform/sentinel"
)

// Memory is an in-memory Store for tests and single-node development.
type Memory struct {
	mu    sync.RWMutex
	users map[id.UserID]models.User
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{users: make(map[id.UserID]models.User)}
}

func (m *Memory) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[u.ID]; exists {
		return sentinel.ErrConflict
	}
	if m.emailTakenLocked(u.Email, u.ID) {
		return sentinel.ErrConflict
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) Get(ctx context.Context, userID id.UserID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (m *Memory) List(ctx context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *Memory) Update(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if m.emailTakenLocked(u.Email, u.ID) {
		return sentinel.ErrConflict
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) Delete(ctx context.Context, userID id.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.users, userID)
	return nil
}

func (m *Memory) Names(ctx context.Context, ids []id.UserID) (map[id.UserID]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[id.UserID]string, len(ids))
	for _, userID := range ids {
		if u, ok := m.users[userID]; ok {
			out[userID] = u.Name
		}
	}
	return out, nil
}

// emailTakenLocked reports whether another user already uses email. Caller
// holds m.mu.
func (m *Memory) emailTakenLocked(email string, self id.UserID) bool {
	for _, u := range m.users {
		if u.ID != self && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
