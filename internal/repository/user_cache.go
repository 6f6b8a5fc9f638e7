package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-escalation/internal/domain"
)

const (
	userCachePrefix        = "ticket-escalation:user:"
	accountManagerCacheKey = "ticket-escalation:account-manager"
)

// UserDirectory is the lookup half of UserRepository.
type UserDirectory interface {
	GetUser(ctx context.Context, username string) (domain.User, bool, error)
	GetAccountManager(ctx context.Context) (domain.User, bool, error)
}

// CachedUserDirectory is a read-through Redis cache in front of a UserDirectory.
// Only found users are cached; cache failures fall back to the source.
type CachedUserDirectory struct {
	source UserDirectory
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedUserDirectory wraps source. A nil client or non-positive ttl disables caching.
func NewCachedUserDirectory(source UserDirectory, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedUserDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedUserDirectory{source: source, client: client, ttl: ttl, logger: logger}
}

func (c *CachedUserDirectory) GetUser(ctx context.Context, username string) (domain.User, bool, error) {
	return c.lookup(ctx, userCachePrefix+username, func() (domain.User, bool, error) {
		return c.source.GetUser(ctx, username)
	})
}

func (c *CachedUserDirectory) GetAccountManager(ctx context.Context) (domain.User, bool, error) {
	return c.lookup(ctx, accountManagerCacheKey, func() (domain.User, bool, error) {
		return c.source.GetAccountManager(ctx)
	})
}

func (c *CachedUserDirectory) lookup(ctx context.Context, key string, load func() (domain.User, bool, error)) (domain.User, bool, error) {
	if !c.enabled() {
		return load()
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var user domain.User
		if err := json.Unmarshal(raw, &user); err == nil {
			return user, true, nil
		}
		c.logger.Warn("discarding malformed cached user", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("user cache read failed", zap.String("key", key), zap.Error(err))
	}

	user, found, err := load()
	if err != nil || !found {
		return user, found, err
	}

	if payload, err := json.Marshal(user); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("user cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return user, true, nil
}

func (c *CachedUserDirectory) enabled() bool {
	return c.client != nil && c.ttl > 0
}
