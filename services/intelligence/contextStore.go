// File: services/intelligence/contextStore.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"solobuddy/models"

	"github.com/go-redis/redis/v8"
)

// RedisContextStore keeps each traveler's recent search conversation under
// ai:ctx:<userID>. Every write refreshes the TTL, so an idle conversation
// simply disappears.
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) key(userID string) string {
	return "ai:ctx:" + userID
}

// Get returns an empty conversation when none is stored. An entry that no
// longer decodes is dropped rather than failing the search.
func (s *RedisContextStore) Get(ctx context.Context, userID string) (*models.AIContext, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.AIContext{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load ai context: %w", err)
	}

	var conv models.AIContext
	if err := json.Unmarshal(raw, &conv); err != nil {
		_ = s.client.Del(ctx, s.key(userID)).Err()
		return &models.AIContext{}, nil
	}
	return &conv, nil
}

func (s *RedisContextStore) Set(ctx context.Context, userID string, conv *models.AIContext) error {
	if conv == nil || len(conv.Turns) == 0 {
		return s.Clear(ctx, userID)
	}
	b, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode ai context: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save ai context: %w", err)
	}
	return nil
}

func (s *RedisContextStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("clear ai context: %w", err)
	}
	return nil
}
