package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestProvider(t *testing.T) *BigCacheProvider {
	t.Helper()
	provider, err := NewBigCacheProvider(context.Background(), BigCacheConfig{TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewBigCacheProvider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Close() })
	return provider
}

func TestBigCacheRoundTrip(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	if err := provider.Set(ctx, "summary", []byte(`{"total":5}`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := provider.Get(ctx, "summary")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"total":5}` {
		t.Fatalf("Get = %q", got)
	}
}

func TestBigCacheMiss(t *testing.T) {
	provider := newTestProvider(t)
	if _, err := provider.Get(context.Background(), "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get(absent) = %v, want ErrCacheMiss", err)
	}
}

func TestBigCacheSetNX(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	ok, err := provider.SetNX(ctx, "lock", []byte("a"), time.Minute)
	if err != nil || !ok {
		t.Fatalf("first SetNX = %v, %v, want stored", ok, err)
	}
	ok, err = provider.SetNX(ctx, "lock", []byte("b"), time.Minute)
	if err != nil || ok {
		t.Fatalf("second SetNX = %v, %v, want rejected", ok, err)
	}
	got, err := provider.Get(ctx, "lock")
	if err != nil || string(got) != "a" {
		t.Fatalf("Get after SetNX = %q, %v", got, err)
	}
}

func TestBigCacheDel(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	if err := provider.Set(ctx, "key", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := provider.Del(ctx, "key"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := provider.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get after Del = %v, want ErrCacheMiss", err)
	}
	if err := provider.Del(ctx, "never-existed"); err != nil {
		t.Fatalf("Del(absent) = %v, want nil", err)
	}
}

func TestNoopProvider(t *testing.T) {
	var provider Provider = NoopProvider{}
	ctx := context.Background()

	if err := provider.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := provider.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("noop Get = %v, want ErrCacheMiss", err)
	}
}
