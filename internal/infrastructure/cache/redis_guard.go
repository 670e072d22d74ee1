package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/lotiva/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultGuardKeyPrefix = "lotiva:guard:"

// RedisGuard implements OperationGuard using Redis.
// This is suitable for deployments where several instances may send
// the same contract email
type RedisGuard struct {
	client     *redis.Client
	ownsClient bool
	keyPrefix  string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisGuard creates a new Redis-based operation guard
func NewRedisGuard(cfg RedisConfig) (*RedisGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisGuard{
		client:     client,
		ownsClient: true,
		keyPrefix:  defaultGuardKeyPrefix,
	}, nil
}

// NewRedisGuardWithClient creates a guard with an existing Redis client.
// The caller retains ownership of the client.
func NewRedisGuardWithClient(client *redis.Client, keyPrefix string) *RedisGuard {
	if keyPrefix == "" {
		keyPrefix = defaultGuardKeyPrefix
	}
	return &RedisGuard{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire claims key for ttl using SET NX so that exactly one caller wins
func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("guard key is required")
	}
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire guard %q: %w", key, err)
	}
	return ok, nil
}

// Release frees key
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release guard %q: %w", key, err)
	}
	return nil
}

// Close closes the Redis client if the guard created it
func (g *RedisGuard) Close() error {
	if !g.ownsClient {
		return nil
	}
	return g.client.Close()
}

var _ shared.OperationGuard = (*RedisGuard)(nil)
