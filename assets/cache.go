package assets

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"github.com/ggldnl/hexviz/logging"
	"github.com/ggldnl/hexviz/spatialmath"
	"github.com/ggldnl/hexviz/utils"
)

// Cache is a coalescing mesh cache. Concurrent requests for the same filename share one
// in-flight load, and every caller receives its own copy of the mesh. Failed loads are not
// cached.
type Cache struct {
	loader Loader
	logger logging.Logger
	group  singleflight.Group

	mu     sync.RWMutex
	meshes map[string]*spatialmath.Mesh

	fetches atomic.Int64
}

// NewCache returns an empty cache backed by loader.
func NewCache(loader Loader, logger logging.Logger) *Cache {
	return &Cache{
		loader: loader,
		logger: logger,
		meshes: map[string]*spatialmath.Mesh{},
	}
}

// Get returns a private copy of the mesh named by assetPath, loading it if needed.
func (c *Cache) Get(ctx context.Context, assetPath string) (*spatialmath.Mesh, error) {
	key := Key(assetPath)
	if key == "" {
		return nil, errors.Errorf("mesh reference %q has no filename", assetPath)
	}
	if m, ok := c.lookup(key); ok {
		return m.Clone(), nil
	}

	// the shared load must not die with whichever caller happened to start it
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		if m, ok := c.lookup(key); ok {
			return m, nil
		}
		c.fetches.Inc()
		c.logger.Debugw("loading mesh", "filename", key)
		m, err := c.loader.Load(loadCtx, key)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.meshes[key] = m
		c.mu.Unlock()
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		m, err := utils.AssertType[*spatialmath.Mesh](res.Val)
		if err != nil {
			return nil, err
		}
		return m.Clone(), nil
	}
}

func (c *Cache) lookup(key string) (*spatialmath.Mesh, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.meshes[key]
	return m, ok
}

// Len returns the number of cached meshes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.meshes)
}

// Fetches returns how many times the underlying loader has been called.
func (c *Cache) Fetches() int64 {
	return c.fetches.Load()
}

// Purge drops every cached mesh.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meshes = map[string]*spatialmath.Mesh{}
}
