package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// AvailabilityCache remembers interpreted slots per day so repeated checks
// do not re-run the upstream agent.
type AvailabilityCache interface {
	Get(ctx context.Context, date string) ([]string, bool, error)
	Set(ctx context.Context, date string, slots []string) error
	Invalidate(ctx context.Context, date string) error
}

// RedisAvailabilityCache stores slot lists as JSON strings with a TTL.
type RedisAvailabilityCache struct {
	redis   *redis.Client
	variant string
	ttl     time.Duration
	tracer  trace.Tracer
}

func NewRedisAvailabilityCache(client *redis.Client, variant string, ttl time.Duration) *RedisAvailabilityCache {
	if client == nil {
		panic("booking: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisAvailabilityCache{
		redis:   client,
		variant: variant,
		ttl:     ttl,
		tracer:  otel.Tracer("booking.internal.booking.cache"),
	}
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, date string) ([]string, bool, error) {
	ctx, span := c.tracer.Start(ctx, "booking.cache_get")
	defer span.End()

	data, err := c.redis.Get(ctx, c.key(date)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		span.RecordError(err)
		return nil, false, fmt.Errorf("booking: failed to load cached availability: %w", err)
	}
	var slots []string
	if err := json.Unmarshal(data, &slots); err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("booking: failed to decode cached availability: %w", err)
	}
	return slots, true, nil
}

func (c *RedisAvailabilityCache) Set(ctx context.Context, date string, slots []string) error {
	ctx, span := c.tracer.Start(ctx, "booking.cache_set")
	defer span.End()

	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("booking: failed to marshal availability: %w", err)
	}
	if err := c.redis.Set(ctx, c.key(date), data, c.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: failed to cache availability: %w", err)
	}
	return nil
}

func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, date string) error {
	if err := c.redis.Del(ctx, c.key(date)).Err(); err != nil {
		return fmt.Errorf("booking: failed to invalidate availability: %w", err)
	}
	return nil
}

func (c *RedisAvailabilityCache) key(date string) string {
	return fmt.Sprintf("availability:%s:%s", c.variant, date)
}
