package remote

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
)

// Cache keeps the last provider response per account until it expires.
type Cache interface {
	Get(ctx context.Context, accountID string) (domain.TokenPair, bool, error)
	Set(ctx context.Context, accountID string, pair domain.TokenPair, ttl time.Duration) error
	Delete(ctx context.Context, accountID string) error
}

type memoryEntry struct {
	pair    domain.TokenPair
	expires time.Time
}

// MemoryCache is a process local Cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, accountID string) (domain.TokenPair, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[accountID]
	if !ok {
		return domain.TokenPair{}, false, nil
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, accountID)
		return domain.TokenPair{}, false, nil
	}
	return e.pair, true, nil
}

func (c *MemoryCache) Set(_ context.Context, accountID string, pair domain.TokenPair, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[accountID] = memoryEntry{pair: pair, expires: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, accountID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, accountID)
	return nil
}

// RedisCache shares provider responses between replicas.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

const defaultRedisPrefix = "tokenreg:remote:"

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client, prefix: defaultRedisPrefix}
}

func (c *RedisCache) key(accountID string) string { return c.prefix + accountID }

func (c *RedisCache) Get(ctx context.Context, accountID string) (domain.TokenPair, bool, error) {
	val, err := c.client.Get(ctx, c.key(accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.TokenPair{}, false, nil
	}
	if err != nil {
		return domain.TokenPair{}, false, err
	}
	pair, err := DecodePair(val)
	if err != nil {
		// Unreadable entries are treated as a miss and overwritten later.
		return domain.TokenPair{}, false, nil
	}
	return pair, true, nil
}

func (c *RedisCache) Set(ctx context.Context, accountID string, pair domain.TokenPair, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	val, err := json.Marshal(pair)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(accountID), val, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, accountID string) error {
	return c.client.Del(ctx, c.key(accountID)).Err()
}
