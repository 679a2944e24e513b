package cache

import (
	"context"
	"testing"
	"time"
)

func TestKeyRounding(t *testing.T) {
	if Key(33.77001, -84.39002) != Key(33.77049, -84.38963) {
		t.Fatal("nearby coordinates should share a key")
	}
	if Key(33.77, -84.39) == Key(33.78, -84.39) {
		t.Fatal("distinct grid cells must not collide")
	}
}

func TestMemoryCacheHitMissExpiry(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if _, ok, _ := c.Get(ctx, 33.77, -84.39); ok {
		t.Fatal("empty cache should miss")
	}
	if err := c.Set(ctx, 33.77, -84.39, 512.5, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	ghi, ok, err := c.Get(ctx, 33.77, -84.39)
	if err != nil || !ok || ghi != 512.5 {
		t.Fatalf("get: %v %v %v", ghi, ok, err)
	}

	_ = c.Set(ctx, 10, 10, 100, -time.Second)
	if _, ok, _ := c.Get(ctx, 10, 10); ok {
		t.Fatal("expired entry should miss")
	}
}
