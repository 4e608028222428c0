// Package memory keeps users in process memory. It backs the service when
// no database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jsamuelsen/lingo-service/internal/domain"
	"github.com/jsamuelsen/lingo-service/internal/ports"
)

// UserRepository implements ports.UserRepository on a map.
type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]string
}

// NewUserRepository creates an empty repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]string)}
}

// Create stores a user, replacing any user with the same id.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = user.Name

	return nil
}

// Get returns a copy of the stored user or ports.ErrNotFound.
func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}

	return &domain.User{ID: id, Name: name}, nil
}

// Update renames an existing user.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return 0, nil
	}

	r.users[user.ID] = user.Name

	return 1, nil
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return 0, nil
	}

	delete(r.users, id)

	return 1, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
