package in_memory

import (
	"context"
	"sync"

	"github.com/nvoronina/matching-engine/internal/domain"
	"github.com/nvoronina/matching-engine/internal/port"
)

var _ port.Cache = (*Cache)(nil)

// Cache is the in-process depth cache counterpart to the redis adapter.
type Cache struct {
	mu    sync.Mutex
	snaps map[string]*domain.DepthSnapshot
}

func NewCache() *Cache {
	return &Cache{snaps: make(map[string]*domain.DepthSnapshot)}
}

func (c *Cache) SetDepth(ctx context.Context, snap *domain.DepthSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps[snap.Instrument] = snap
	return nil
}

func (c *Cache) GetDepth(ctx context.Context, instrument string) (*domain.DepthSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snaps[instrument], nil
}

func (c *Cache) Invalidate(ctx context.Context, instrument string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snaps, instrument)
	return nil
}
