package guide

import (
	"context"
	"errors"
	"time"

	guideRepo "solobuddy/database/repository/guide"
	"solobuddy/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const identityTTL = 10 * time.Minute

// ErrCacheMiss is returned by IdentityCache.Get when nothing is cached.
var ErrCacheMiss = errors.New("identity cache miss")

// IdentityCache remembers user -> guide lookups.
type IdentityCache interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, guideID string, ttl time.Duration) error
}

// RedisIdentityCache stores identities in the auth Redis database.
type RedisIdentityCache struct {
	Client *redis.Client
}

func NewRedisIdentityCache(client *redis.Client) *RedisIdentityCache {
	return &RedisIdentityCache{Client: client}
}

func identityKey(userID string) string {
	return "guide_identity:" + userID
}

func (c *RedisIdentityCache) Get(ctx context.Context, userID string) (string, error) {
	v, err := c.Client.Get(ctx, identityKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return v, err
}

func (c *RedisIdentityCache) Set(ctx context.Context, userID, guideID string, ttl time.Duration) error {
	return c.Client.Set(ctx, identityKey(userID), guideID, ttl).Err()
}

// ResolveGuideIdentity returns FORBIDDEN for users without a guide profile.
// Cache failures fall back to the database.
func (s *DefaultGuideService) ResolveGuideIdentity(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", utils.Forbidden("user is not a tour guide")
	}
	if s.Identity != nil {
		guideID, err := s.Identity.Get(ctx, userID)
		if err == nil && guideID != "" {
			return guideID, nil
		}
		if err != nil && !errors.Is(err, ErrCacheMiss) {
			s.Logger.Warn("Guide identity cache read failed", zap.String("userId", userID), zap.Error(err))
		}
	}

	g, err := s.Repo.GetByUserID(ctx, userID)
	if errors.Is(err, guideRepo.ErrGuideNotFound) {
		return "", utils.Forbidden("user is not a tour guide")
	}
	if err != nil {
		return "", err
	}

	if s.Identity != nil {
		if err := s.Identity.Set(ctx, userID, g.ID, identityTTL); err != nil {
			s.Logger.Warn("Guide identity cache write failed", zap.String("userId", userID), zap.Error(err))
		}
	}
	return g.ID, nil
}
