package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"

	infraredis "github.com/iho/creditledger/internal/infrastructure/redis"
)

// newTestRedisClient connects the shared client constructor to an in-memory
// server that lives for the test.
func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := infraredis.NewClient(context.Background(), infraredis.Config{
		URL:      "redis://" + mr.Addr(),
		PoolSize: 2,
	})
	if err != nil {
		t.Fatalf("connect to miniredis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}
