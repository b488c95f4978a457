package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/inkwell/inkwell/pkg/config"
)

func TestHashKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{
			name:  "single part",
			parts: []string{"test"},
		},
		{
			name:  "multiple parts",
			parts: []string{"posts", "3", "music", "2", "10"},
		},
		{
			name:  "empty parts",
			parts: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed1 := HashKey(tt.parts...)
			hashed2 := HashKey(tt.parts...)

			if hashed1 != hashed2 {
				t.Errorf("HashKey() should be consistent, got %s and %s", hashed1, hashed2)
			}

			// Hash should be 32 characters (MD5 hex)
			if len(hashed1) != 32 {
				t.Errorf("HashKey() should return 32 character hex string, got length %d", len(hashed1))
			}
		})
	}
}

func TestHashKeySeparatesParts(t *testing.T) {
	if HashKey("ab", "c") == HashKey("a", "bc") {
		t.Error("HashKey() should not collide when parts shift")
	}
}

func TestCache_NamespaceKey(t *testing.T) {
	cache := &Cache{}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "simple key",
			key:      "test",
			expected: "inkwell:test",
		},
		{
			name:     "key with colon",
			key:      "revoked:abc",
			expected: "inkwell:revoked:abc",
		},
		{
			name:     "empty key",
			key:      "",
			expected: "inkwell:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cache.namespaceKey(tt.key)
			if result != tt.expected {
				t.Errorf("namespaceKey() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()

	c, err := New(&config.RedisConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c != nil {
		t.Fatal("New() should return a nil cache when disabled")
	}

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Get() error = %v, want ErrCacheDisabled", err)
	}
	if err := c.SetJSON(ctx, "k", 1, time.Second); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("SetJSON() error = %v, want ErrCacheDisabled", err)
	}
	if err := c.Bump(ctx, "posts"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Bump() error = %v, want ErrCacheDisabled", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRedisCache(t *testing.T) {
	redisURL := os.Getenv("INKWELL_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("INKWELL_TEST_REDIS_URL not set, skipping Redis tests")
	}

	ctx := context.Background()
	c, err := New(&config.RedisConfig{URL: redisURL, Enabled: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	key := "test:" + HashKey(t.Name(), time.Now().String())
	defer c.Delete(ctx, key)

	if err := c.GetJSON(ctx, key, new([]int)); !errors.Is(err, ErrMiss) {
		t.Fatalf("GetJSON() on missing key error = %v, want ErrMiss", err)
	}
	if err := c.SetJSON(ctx, key, []int{1, 2, 3}, time.Minute); err != nil {
		t.Fatalf("SetJSON() error = %v", err)
	}
	var got []int
	if err := c.GetJSON(ctx, key, &got); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if len(got) != 3 || got[2] != 3 {
		t.Errorf("GetJSON() = %v, want [1 2 3]", got)
	}

	gen := "test-gen-" + key
	defer c.Delete(ctx, "gen:"+gen)
	before, err := c.Generation(ctx, gen)
	if err != nil {
		t.Fatalf("Generation() error = %v", err)
	}
	if err := c.Bump(ctx, gen); err != nil {
		t.Fatalf("Bump() error = %v", err)
	}
	after, _ := c.Generation(ctx, gen)
	if after != before+1 {
		t.Errorf("Generation() after Bump = %d, want %d", after, before+1)
	}

	jti := "jti-" + key
	defer c.Delete(ctx, "revoked:"+jti)
	if err := c.Revoke(ctx, jti, time.Minute); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if revoked, err := c.Revoked(ctx, jti); err != nil || !revoked {
		t.Errorf("Revoked() = %v, %v; want true, nil", revoked, err)
	}
}
