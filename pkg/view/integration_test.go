//go:build integration

package view

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/conceptmap/pkg/cache"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	client, err := cache.DialRedis(ctx, cache.RedisOptions{Addr: envOr("CONCEPTMAP_REDIS_ADDR", "localhost:6379"), DB: 15})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	s := NewRedisStore(client)
	defer s.Close()
	testStore(t, s)
}

func TestMongoStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := DialMongo(ctx, envOr("CONCEPTMAP_MONGO_URI", "mongodb://localhost:27017"), "conceptmap_test")
	if err != nil {
		t.Skipf("mongo unavailable: %v", err)
	}
	defer s.Close()
	if err := s.coll.Drop(ctx); err != nil {
		t.Fatalf("drop: %v", err)
	}
	testStore(t, s)
}
