// Package redis caches users in Redis as JSON documents.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jsamuelsen/lingo-service/internal/domain"
	"github.com/jsamuelsen/lingo-service/internal/platform/config"
	"github.com/jsamuelsen/lingo-service/internal/ports"
)

const keyPrefix = "user:"

// NewClient creates a go-redis client from cfg.
func NewClient(cfg *config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// cachedUser is the stored form of a user.
type cachedUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// UserCache implements ports.UserCache and ports.HealthChecker. Entries
// expire after the configured TTL.
type UserCache struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewUserCache creates a cache on client. A ttl of zero means entries never
// expire.
func NewUserCache(client goredis.UniversalClient, ttl time.Duration) *UserCache {
	return &UserCache{client: client, ttl: ttl}
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// Get returns the cached user. A miss is reported with ok false and no
// error.
func (c *UserCache) Get(ctx context.Context, id uuid.UUID) (*domain.User, bool, error) {
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("reading cached user %s: %w", id, err)
	}

	var entry cachedUser
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("decoding cached user %s: %w", id, err)
	}

	return &domain.User{ID: entry.ID, Name: entry.Name}, true, nil
}

// Set stores user for the cache TTL.
func (c *UserCache) Set(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(cachedUser{ID: user.ID, Name: user.Name})
	if err != nil {
		return fmt.Errorf("encoding user %s: %w", user.ID, err)
	}

	if err := c.client.Set(ctx, key(user.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("caching user %s: %w", user.ID, err)
	}

	return nil
}

// Delete evicts a user. Evicting a missing entry is not an error.
func (c *UserCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("evicting user %s: %w", id, err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (c *UserCache) Name() string {
	return domain.DependencyCache
}

// Check implements ports.HealthChecker.
func (c *UserCache) Check(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	return nil
}

var (
	_ ports.UserCache     = (*UserCache)(nil)
	_ ports.HealthChecker = (*UserCache)(nil)
)
