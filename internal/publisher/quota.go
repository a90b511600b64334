package publisher

import (
	"context"
	"fmt"
	"sync"
	"time"

	platformredis "mindcast/internal/platform/redis"
)

// quotaTTL keeps daily counters around long enough for any timezone skew.
const quotaTTL = 48 * time.Hour

// QuotaStore counts published posts per day. Allow reserves a slot in the
// day's counter; a reservation whose publish fails must be handed back with
// Release so a same-day retry is not locked out.
type QuotaStore interface {
	Allow(ctx context.Context, day string, limit int) (bool, error)
	Release(ctx context.Context, day string) error
}

// InMemoryQuotaStore tracks daily publish counts in process memory.
type InMemoryQuotaStore struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewInMemoryQuotaStore constructs an empty quota store.
func NewInMemoryQuotaStore() *InMemoryQuotaStore {
	return &InMemoryQuotaStore{counts: make(map[string]int)}
}

// Allow reserves a slot in the day's counter and reports whether the
// publish may proceed. A denied attempt holds no reservation. Counters for
// other days are dropped to keep the map bounded.
func (s *InMemoryQuotaStore) Allow(_ context.Context, day string, limit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.counts {
		if k != day {
			delete(s.counts, k)
		}
	}
	if s.counts[day] >= limit {
		return false, nil
	}
	s.counts[day]++
	return true, nil
}

// Release hands a reserved slot back after a failed publish.
func (s *InMemoryQuotaStore) Release(_ context.Context, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.counts[day] > 0 {
		s.counts[day]--
	}
	return nil
}

// RedisQuotaStore shares the daily counter across instances.
type RedisQuotaStore struct {
	client *platformredis.Client
}

// NewRedisQuotaStore constructs a quota store backed by redis.
func NewRedisQuotaStore(client *platformredis.Client) *RedisQuotaStore {
	return &RedisQuotaStore{client: client}
}

// Allow reserves a slot atomically via INCR. An over-limit reservation is
// handed straight back so only granted slots stay counted.
func (s *RedisQuotaStore) Allow(ctx context.Context, day string, limit int) (bool, error) {
	key := "mindcast:publish-quota:" + day
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("increment quota counter: %w", err)
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, quotaTTL).Err(); err != nil {
			return false, fmt.Errorf("set quota ttl: %w", err)
		}
	}
	if n > int64(limit) {
		if err := s.client.Decr(ctx, key).Err(); err != nil {
			return false, fmt.Errorf("undo quota reservation: %w", err)
		}
		return false, nil
	}
	return true, nil
}

// Release decrements the day's counter. The key exists whenever a
// reservation was handed out within the TTL, so DECR cannot invent a key.
func (s *RedisQuotaStore) Release(ctx context.Context, day string) error {
	key := "mindcast:publish-quota:" + day
	if err := s.client.Decr(ctx, key).Err(); err != nil {
		return fmt.Errorf("release quota slot: %w", err)
	}
	return nil
}
