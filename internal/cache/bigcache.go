package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
)

// BigCacheConfig holds sizing parameters for the in-process cache.
type BigCacheConfig struct {
	TTL       time.Duration
	Shards    int
	MaxSizeMB int
}

// BigCacheProvider implements Provider on top of an in-process bigcache
// instance. Entries expire on the life window configured at construction;
// the per-call TTL is accepted for interface compatibility but the life
// window wins.
type BigCacheProvider struct {
	cache *bigcache.BigCache
	nxMu  sync.Mutex
}

func NewBigCacheProvider(ctx context.Context, cfg BigCacheConfig) (*BigCacheProvider, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Minute
	}
	if cfg.Shards <= 0 {
		cfg.Shards = 64
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 32
	}
	clean := cfg.TTL / 2
	if clean < time.Second {
		clean = time.Second
	}

	inner, err := bigcache.New(ctx, bigcache.Config{
		Shards:             cfg.Shards,
		LifeWindow:         cfg.TTL,
		CleanWindow:        clean,
		MaxEntriesInWindow: 1000,
		MaxEntrySize:       16 * 1024,
		Verbose:            false,
		HardMaxCacheSize:   cfg.MaxSizeMB,
	})
	if err != nil {
		return nil, err
	}
	return &BigCacheProvider{cache: inner}, nil
}

// Get fetches bytes by key, returning ErrCacheMiss when the key is absent.
func (p *BigCacheProvider) Get(_ context.Context, key string) ([]byte, error) {
	value, err := p.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, ErrCacheMiss
	}
	return value, err
}

// Set stores bytes under key. The entry lives for the configured life
// window regardless of the ttl argument.
func (p *BigCacheProvider) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	return p.cache.Set(key, value)
}

// SetNX stores the value only if the key is currently absent. bigcache has
// no native NX primitive, so the check-and-set pair runs under a lock.
func (p *BigCacheProvider) SetNX(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	p.nxMu.Lock()
	defer p.nxMu.Unlock()

	if _, err := p.cache.Get(key); err == nil {
		return false, nil
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		return false, err
	}
	if err := p.cache.Set(key, value); err != nil {
		return false, err
	}
	return true, nil
}

// Del removes a key. Deleting an absent key is not an error.
func (p *BigCacheProvider) Del(_ context.Context, key string) error {
	err := p.cache.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

// Close releases the underlying cache.
func (p *BigCacheProvider) Close() error { return p.cache.Close() }
