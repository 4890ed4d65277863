package toolkit

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize bounds the number of toolkits kept alive.
const DefaultCacheSize = 8

// Builder constructs the toolkit for key, typically a provider identity.
type Builder func(ctx context.Context, key string) (*Toolkit, error)

// Cache keeps recently used toolkits. Concurrent first use of a key builds it once.
type Cache struct {
	entries *lru.Cache[string, *Toolkit]
	group   singleflight.Group
	build   Builder
}

func NewCache(size int, build Builder) (*Cache, error) {
	if build == nil {
		return nil, errors.New("toolkit builder is required")
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, *Toolkit](size)
	if err != nil {
		return nil, fmt.Errorf("create toolkit cache: %w", err)
	}
	return &Cache{entries: entries, build: build}, nil
}

// Get returns the cached toolkit for key, building it on a miss. Failed
// builds are not cached.
func (c *Cache) Get(ctx context.Context, key string) (*Toolkit, error) {
	if tk, ok := c.entries.Get(key); ok {
		return tk, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if tk, ok := c.entries.Get(key); ok {
			return tk, nil
		}
		tk, err := c.build(ctx, key)
		if err != nil {
			return nil, err
		}
		if tk == nil {
			return nil, fmt.Errorf("builder returned no toolkit for %q", key)
		}
		c.entries.Add(key, tk)
		return tk, nil
	})
	if err != nil {
		return nil, fmt.Errorf("build toolkit %q: %w", key, err)
	}
	return v.(*Toolkit), nil
}

func (c *Cache) Len() int { return c.entries.Len() }
