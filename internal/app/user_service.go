// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jsamuelsen/lingo-service/internal/domain"
	"github.com/jsamuelsen/lingo-service/internal/ports"
)

// UserService orchestrates the user use cases. Reads go through the cache
// when one is configured; writes go to the repository and evict the cache.
type UserService struct {
	repo   ports.UserRepository
	cache  ports.UserCache
	logger *slog.Logger
}

// UserServiceConfig contains the dependencies of UserService.
type UserServiceConfig struct {
	Repository ports.UserRepository

	// Cache is optional.
	Cache ports.UserCache

	Logger *slog.Logger
}

// NewUserService creates a user service. It panics without a repository.
func NewUserService(cfg UserServiceConfig) *UserService {
	if cfg.Repository == nil {
		panic("app: NewUserService requires a Repository")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		repo:   cfg.Repository,
		cache:  cfg.Cache,
		logger: logger.With(slog.String("component", "app.UserService")),
	}
}

// Create registers a new user under a fresh id.
func (s *UserService) Create(ctx context.Context, name string) (*domain.User, error) {
	user := &domain.User{ID: uuid.New(), Name: name}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, dependencyFailure(domain.DependencyDatabase, err)
	}

	s.logger.InfoContext(ctx, "user created", slog.String("user_id", user.ID.String()))

	return user, nil
}

// Get returns a user, serving it from the cache when possible. Cache
// failures are logged and the repository is used instead.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := s.cached(ctx, id); ok {
		return user, nil
	}

	user, err := s.repo.Get(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, domain.NewUserNotFoundError(id)
	}

	if err != nil {
		return nil, dependencyFailure(domain.DependencyDatabase, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			s.logger.WarnContext(ctx, "caching user failed",
				slog.String("user_id", id.String()),
				slog.Any("error", err),
			)
		}
	}

	return user, nil
}

// Update renames a user. An unknown id is a not-found business error.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, name string) (*domain.User, error) {
	user := &domain.User{ID: id, Name: name}

	rows, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, dependencyFailure(domain.DependencyDatabase, err)
	}

	if rows == 0 {
		return nil, domain.NewUserNotFoundError(id)
	}

	if err := s.evict(ctx, id); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes a user and returns the number of removed rows, which is
// zero for an unknown id.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, dependencyFailure(domain.DependencyDatabase, err)
	}

	if err := s.evict(ctx, id); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", id.String()),
		slog.Int64("affected_rows", rows),
	)

	return rows, nil
}

func (s *UserService) cached(ctx context.Context, id uuid.UUID) (*domain.User, bool) {
	if s.cache == nil {
		return nil, false
	}

	user, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "user cache read failed, using repository",
			slog.String("user_id", id.String()),
			slog.Any("error", err),
		)

		return nil, false
	}

	return user, ok
}

// evict must succeed after a write, otherwise readers could see the old
// value until the entry expires.
func (s *UserService) evict(ctx context.Context, id uuid.UUID) error {
	if s.cache == nil {
		return nil
	}

	if err := s.cache.Delete(ctx, id); err != nil {
		return dependencyFailure(domain.DependencyCache, err)
	}

	return nil
}

// dependencyFailure wraps an infrastructure error. Deadlines are reported
// as timeouts rather than as a broken dependency.
func dependencyFailure(dependency string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.TimeoutError{Cause: err}
	}

	return domain.NewDependencyError(dependency, err)
}
