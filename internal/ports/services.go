// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never driver or wire types
//   - Infrastructure failures are returned as-is; the application layer
//     classifies them
package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jsamuelsen/lingo-service/internal/domain"
)

// ErrNotFound is returned by repositories when no record matches.
var ErrNotFound = errors.New("record not found")

// UserRepository persists users.
type UserRepository interface {
	// Create stores a new user. The caller assigns the id.
	Create(ctx context.Context, user *domain.User) error

	// Get returns the user with the given id, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// Update renames a user and reports how many rows changed.
	Update(ctx context.Context, user *domain.User) (int64, error)

	// Delete removes a user and reports how many rows were removed.
	// Deleting an unknown id is not an error.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// UserCache is a read-through cache in front of UserRepository.
// Implementations may be remote, so every call can fail.
type UserCache interface {
	// Get returns the cached user and whether it was present.
	Get(ctx context.Context, id uuid.UUID) (*domain.User, bool, error)

	// Set caches a user.
	Set(ctx context.Context, user *domain.User) error

	// Delete evicts a user. Evicting an absent entry is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}
