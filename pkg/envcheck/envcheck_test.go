package envcheck

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestCheck_NoCacheBackend(t *testing.T) {
	if err := Check(context.Background(), nil); err != nil {
		t.Fatalf("Check without cache backend failed: %v", err)
	}
}

func TestCheck_UnreachableCacheBackend(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	if err := Check(context.Background(), client); err == nil {
		t.Fatal("Check should fail when the cache backend is unreachable")
	}
}

func TestCheck_ReachableCacheBackend(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := Check(ctx, client); err != nil {
		t.Fatalf("Check with reachable backend failed: %v", err)
	}
}
