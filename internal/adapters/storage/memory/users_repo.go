package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"concierium/internal/domain/users"
)

type usersRepo struct {
	mu      sync.RWMutex
	byID    map[string]users.User
	byEmail map[string]string // email -> id
}

func NewUsersRepo() users.Repository {
	return &usersRepo{
		byID:    make(map[string]users.User),
		byEmail: make(map[string]string),
	}
}

func (r *usersRepo) Create(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.byID[u.ID]; exists {
		return errors.New("user already exists")
	}
	if _, exists := r.byEmail[u.Email]; exists {
		return errors.New("email already registered")
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *usersRepo) Update(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.byID[u.ID]
	if !exists {
		return users.ErrNotFound
	}
	if stored.Email != u.Email {
		delete(r.byEmail, stored.Email)
		r.byEmail[u.Email] = u.ID
	}
	r.byID[u.ID] = u
	return nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return r.byID[id], nil
}
