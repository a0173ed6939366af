package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"corralon_backend/platform/apperr"
	"corralon_backend/platform/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// staleFactor controls how long a cached copy survives in Redis past its TTL,
// so the service can keep quoting while the store is unreachable.
const staleFactor = 6

// Cache serves snapshots from memory, then Redis, then the upstream provider.
// Concurrent misses collapse into one upstream call.
type Cache struct {
	upstream Provider
	rdb      *redis.Client
	key      string
	ttl      time.Duration
	log      *logger.Logger
	now      func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	snap  *Snapshot
}

// NewCache wires a cache in front of upstream. rdb may be nil.
func NewCache(upstream Provider, rdb *redis.Client, keyPrefix string, ttl time.Duration, log *logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{
		upstream: upstream,
		rdb:      rdb,
		key:      keyPrefix + ":catalog:v1",
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

func (c *Cache) current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Cache) fresh(s *Snapshot) bool {
	return s != nil && c.now().Sub(s.FetchedAt) < c.ttl
}

// Snapshot returns a fresh snapshot when possible and a stale one when the
// upstream is failing. Without any copy it reports a collaborator failure.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s := c.current(); c.fresh(s) {
		return s, nil
	}

	v, err, _ := c.group.Do("load", func() (any, error) {
		return c.load(ctx, false)
	})
	if err != nil {
		if s := c.current(); s != nil {
			c.log.CollaboratorFailure("catalog", err)
			return s, nil
		}
		return nil, apperr.Collaborator("catalog", err)
	}
	return v.(*Snapshot), nil
}

// Refresh bypasses the cache and reloads from the upstream provider.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		return c.load(ctx, true)
	})
	if err != nil {
		return nil, apperr.Collaborator("catalog", err)
	}
	return v.(*Snapshot), nil
}

func (c *Cache) load(ctx context.Context, force bool) (*Snapshot, error) {
	var stale *Snapshot
	if !force {
		cached, err := c.readRedis(ctx)
		if err != nil {
			c.log.Warn("catalog cache read failed", "error", err)
		}
		if c.fresh(cached) {
			c.store(cached)
			return cached, nil
		}
		stale = cached
	}

	items, err := c.upstream.ListCatalog(ctx)
	if err != nil {
		if stale != nil {
			c.store(stale)
		}
		return nil, err
	}

	snap := NewSnapshot(items, c.now())
	c.store(snap)
	if err := c.writeRedis(ctx, snap); err != nil {
		c.log.Warn("catalog cache write failed", "error", err)
	}
	c.log.Info("catalog loaded", "items", len(items))
	return snap, nil
}

func (c *Cache) store(s *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil || !s.FetchedAt.Before(c.snap.FetchedAt) {
		c.snap = s
	}
}

func (c *Cache) readRedis(ctx context.Context) (*Snapshot, error) {
	if c.rdb == nil {
		return nil, nil
	}
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cached Snapshot
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, err
	}
	return NewSnapshot(cached.Items, cached.FetchedAt), nil
}

func (c *Cache) writeRedis(ctx context.Context, s *Snapshot) error {
	if c.rdb == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key, data, c.ttl*staleFactor).Err()
}
