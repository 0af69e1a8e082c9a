package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/srujan5570/Communications-App/internal/config"
	"github.com/srujan5570/Communications-App/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

type RedisConversationCache struct {
	client *redis.Client
	prefix string
}

func NewRedisConversationCache(cfg config.RedisConfig) (*RedisConversationCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRedisConversationCache(client, cfg.CachePrefix), nil
}

func newRedisConversationCache(client *redis.Client, prefix string) *RedisConversationCache {
	return &RedisConversationCache{
		client: client,
		prefix: prefix,
	}
}

// BuildKey returns the same key regardless of argument order.
func (c *RedisConversationCache) BuildKey(userA, userB string) string {
	return c.prefix + domain.ConversationKey(userA, userB)
}

func (c *RedisConversationCache) Get(ctx context.Context, key string) ([]domain.Message, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var messages []domain.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return messages, nil
}

func (c *RedisConversationCache) Set(ctx context.Context, key string, messages []domain.Message, ttl time.Duration) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

func (c *RedisConversationCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

func (c *RedisConversationCache) Close() error {
	return c.client.Close()
}
