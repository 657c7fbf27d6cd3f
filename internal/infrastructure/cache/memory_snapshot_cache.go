package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/credit/internal/domain/credit"
	"github.com/google/uuid"
)

type snapshotEntry struct {
	snapshot  credit.Snapshot
	expiresAt time.Time
}

// InMemorySnapshotCache implements credit.SnapshotCache with a map.
// Suitable for a single instance; entries are not shared across processes.
type InMemorySnapshotCache struct {
	mu        sync.RWMutex
	entries   map[string]snapshotEntry
	customers map[string]map[string]struct{}
	ttl       time.Duration
	now       func() time.Time

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySnapshotCache creates the cache and starts its cleanup loop.
// A zero ttl keeps entries until they are invalidated.
func NewInMemorySnapshotCache(ttl time.Duration) *InMemorySnapshotCache {
	c := &InMemorySnapshotCache{
		entries:   make(map[string]snapshotEntry),
		customers: make(map[string]map[string]struct{}),
		ttl:       ttl,
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns a copy of the cached snapshot
func (c *InMemorySnapshotCache) Get(_ context.Context, tenantID, customerID, categoryID uuid.UUID) (*credit.Snapshot, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[snapshotKey(tenantID, customerID, categoryID)]
	if !ok || c.expired(e) {
		return nil, false, nil
	}
	snap := e.snapshot
	return &snap, true, nil
}

// Set stores a copy of snapshot
func (c *InMemorySnapshotCache) Set(_ context.Context, snapshot *credit.Snapshot) error {
	key := snapshotKey(snapshot.TenantID, snapshot.CustomerID, snapshot.ProductCategoryID)
	idx := customerIndexKey(snapshot.TenantID, snapshot.CustomerID)

	e := snapshotEntry{snapshot: *snapshot}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
	if c.customers[idx] == nil {
		c.customers[idx] = make(map[string]struct{})
	}
	c.customers[idx][key] = struct{}{}
	return nil
}

// Invalidate drops one pair
func (c *InMemorySnapshotCache) Invalidate(_ context.Context, tenantID, customerID, categoryID uuid.UUID) error {
	key := snapshotKey(tenantID, customerID, categoryID)
	idx := customerIndexKey(tenantID, customerID)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	if keys := c.customers[idx]; keys != nil {
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.customers, idx)
		}
	}
	return nil
}

// InvalidateCustomer drops every pair of a customer
func (c *InMemorySnapshotCache) InvalidateCustomer(_ context.Context, tenantID, customerID uuid.UUID) error {
	idx := customerIndexKey(tenantID, customerID)

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.customers[idx] {
		delete(c.entries, key)
	}
	delete(c.customers, idx)
	return nil
}

// Size returns the number of live entries
func (c *InMemorySnapshotCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if !c.expired(e) {
			n++
		}
	}
	return n
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemorySnapshotCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemorySnapshotCache) expired(e snapshotEntry) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}

func (c *InMemorySnapshotCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemorySnapshotCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for idx, keys := range c.customers {
		for key := range keys {
			if e, ok := c.entries[key]; !ok || c.expired(e) {
				delete(c.entries, key)
				delete(keys, key)
			}
		}
		if len(keys) == 0 {
			delete(c.customers, idx)
		}
	}
}

var _ credit.SnapshotCache = (*InMemorySnapshotCache)(nil)
