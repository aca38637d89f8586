package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// defaultRedisTestAddr points at the Redis instance of the test docker compose setup.
const defaultRedisTestAddr = "localhost:6380"

// GetRedisTestAddr returns the Redis test address, checking environment variable first.
func GetRedisTestAddr() string {
	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	return defaultRedisTestAddr
}

// SkipIfNoRedis skips the test if the Redis test instance is not reachable.
func SkipIfNoRedis(t *testing.T) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: GetRedisTestAddr()})
	defer func() {
		_ = client.Close()
	}()

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
}

// SetupRedis connects to the Redis test instance, flushes it and closes the client on cleanup.
// The test is skipped when Redis is unreachable.
func SetupRedis(t *testing.T) *redis.Client {
	t.Helper()
	SkipIfNoRedis(t)

	client := redis.NewClient(&redis.Options{Addr: GetRedisTestAddr()})
	require.NoError(t, client.FlushDB(context.Background()).Err(), "failed to flush redis test database")

	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}
