package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "admins", []byte("[1,2]"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "admins")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(val) != "[1,2]" {
		t.Fatalf("expected [1,2], got %s", val)
	}
}

func TestCacheMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	val, err := NewCache(client).Get(context.Background(), "absent")
	if err != nil || val != nil {
		t.Fatalf("expected clean miss, got val=%s err=%v", val, err)
	}
}

func TestCacheExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "admins", []byte("[1]"), 30*time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(31 * time.Second)

	val, err := cache.Get(ctx, "admins")
	if err != nil || val != nil {
		t.Fatalf("expected expired key, got val=%s err=%v", val, err)
	}
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "admins", []byte("[1]"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "admins"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if mr.Exists(cache.prefix + "admins") {
		t.Fatalf("expected key to be deleted")
	}
}
