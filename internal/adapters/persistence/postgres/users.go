// Package postgres stores users in PostgreSQL through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jsamuelsen/lingo-service/internal/domain"
	"github.com/jsamuelsen/lingo-service/internal/platform/config"
	"github.com/jsamuelsen/lingo-service/internal/ports"
)

const (
	querySchema = `
		CREATE TABLE IF NOT EXISTS users (
			id   uuid PRIMARY KEY,
			name varchar(255) NOT NULL
		)`

	queryCreate = `INSERT INTO users (id, name) VALUES ($1, $2)`
	queryGet    = `SELECT id, name FROM users WHERE id = $1`
	queryUpdate = `UPDATE users SET name = $2 WHERE id = $1`
	queryDelete = `DELETE FROM users WHERE id = $1`
)

// DB is the subset of *pgxpool.Pool used by the repository.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}

	if cfg.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// UserRepository implements ports.UserRepository and ports.HealthChecker.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a repository on db.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Migrate creates the users table if it does not exist.
func (r *UserRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, querySchema); err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	return nil
}

// Create inserts a user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, err := r.db.Exec(ctx, queryCreate, user.ID, user.Name); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// Get returns the user with id or ports.ErrNotFound.
func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User

	err := r.db.QueryRow(ctx, queryGet, id).Scan(&user.ID, &user.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return &user, nil
}

// Update renames a user and returns the number of updated rows.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) (int64, error) {
	tag, err := r.db.Exec(ctx, queryUpdate, user.ID, user.Name)
	if err != nil {
		return 0, fmt.Errorf("updating user: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Delete removes a user and returns the number of deleted rows.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, queryDelete, id)
	if err != nil {
		return 0, fmt.Errorf("deleting user: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Name implements ports.HealthChecker.
func (r *UserRepository) Name() string {
	return domain.DependencyDatabase
}

// Check implements ports.HealthChecker.
func (r *UserRepository) Check(ctx context.Context) error {
	return r.db.Ping(ctx)
}

var (
	_ ports.UserRepository = (*UserRepository)(nil)
	_ ports.HealthChecker  = (*UserRepository)(nil)
)
