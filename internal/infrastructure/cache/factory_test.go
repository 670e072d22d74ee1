package cache

import (
	"context"
	"testing"
	"time"

	"github.com/lotiva/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// unreachable points at a port nothing listens on
var unreachable = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

func TestGuardFactory_DisabledRedisUsesInMemory(t *testing.T) {
	f := NewGuardFactory(config.RedisConfig{Enabled: false}, WithLogger(zaptest.NewLogger(t)))
	guard, err := f.CreateGuard()
	require.NoError(t, err)
	defer guard.Close()

	_, ok := guard.(*InMemoryGuard)
	assert.True(t, ok)
}

func TestGuardFactory_FallbackWhenUnavailable(t *testing.T) {
	f := NewGuardFactory(unreachable, WithLogger(zaptest.NewLogger(t)))
	guard, err := f.CreateGuard()
	require.NoError(t, err)
	defer guard.Close()

	_, ok := guard.(*InMemoryGuard)
	assert.True(t, ok)
}

func TestGuardFactory_NoFallback(t *testing.T) {
	f := NewGuardFactory(unreachable, WithInMemoryFallback(false))
	guard, err := f.CreateGuard()
	require.Error(t, err)
	assert.Nil(t, guard)
	assert.Contains(t, err.Error(), "redis required")
}

func TestRedisGuard_ErrorsWhenServerDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	guard := NewRedisGuardWithClient(client, "")
	assert.Equal(t, defaultGuardKeyPrefix, guard.keyPrefix)

	ok, err := guard.Acquire(context.Background(), "email:sale-1", time.Minute)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "failed to acquire guard")

	// shared clients are left open for their owner
	assert.NoError(t, guard.Close())
}
