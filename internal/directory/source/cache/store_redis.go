package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kiril6/users-directory/internal/directory/models"
	"github.com/kiril6/users-directory/pkg/sentinel"
)

// RedisStore persists pages as JSON values with a TTL, so a restarted
// process can resume a session seed without refetching.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) GetPage(ctx context.Context, key string) ([]models.RawRecord, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("page %q: %w", key, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	var page []models.RawRecord
	if err := json.Unmarshal(payload, &page); err != nil {
		return nil, fmt.Errorf("decode cached page %q: %w", key, err)
	}
	return page, nil
}

func (s *RedisStore) PutPage(ctx context.Context, key string, page []models.RawRecord) error {
	payload, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encode page %q: %w", key, err)
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}
