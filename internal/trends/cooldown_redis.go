package trends

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	platformredis "mindcast/internal/platform/redis"
)

// RedisCooldown marks selected topics in Redis so parallel instances skip
// them. Keys expire after the cooldown window.
type RedisCooldown struct {
	client *platformredis.Client
}

// NewRedisCooldown wraps the shared Redis client. A nil client yields a nil
// Cooldown interface value, which the service treats as no cooldown; the
// interface return keeps a typed nil out of the caller's hands.
func NewRedisCooldown(client *platformredis.Client) Cooldown {
	if client == nil {
		return nil
	}
	return &RedisCooldown{client: client}
}

func cooldownRedisKey(key string) string {
	return "mindcast:topic-cooldown:" + key
}

func (c *RedisCooldown) Seen(ctx context.Context, key string) (bool, error) {
	_, err := c.client.Get(ctx, cooldownRedisKey(key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cooldown lookup: %w", err)
	}
	return true, nil
}

func (c *RedisCooldown) Mark(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.client.Set(ctx, cooldownRedisKey(key), "1", ttl).Err(); err != nil {
		return fmt.Errorf("cooldown mark: %w", err)
	}
	return nil
}
