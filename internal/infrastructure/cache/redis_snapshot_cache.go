package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/credit/internal/domain/credit"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSnapshotCache implements credit.SnapshotCache on Redis so that every
// instance sees the same snapshots. Each customer has an index set listing
// its snapshot keys, which InvalidateCustomer deletes in one transaction.
type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotCache creates the cache over an existing client. A zero ttl
// stores entries without expiry.
func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client, ttl: ttl}
}

// Get loads a snapshot. A missing key is a miss, not an error.
func (c *RedisSnapshotCache) Get(ctx context.Context, tenantID, customerID, categoryID uuid.UUID) (*credit.Snapshot, bool, error) {
	raw, err := c.client.Get(ctx, snapshotKey(tenantID, customerID, categoryID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read credit snapshot: %w", err)
	}

	var snap credit.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false, fmt.Errorf("failed to decode credit snapshot: %w", err)
	}
	return &snap, true, nil
}

// Set stores a snapshot and records it in the customer index
func (c *RedisSnapshotCache) Set(ctx context.Context, snapshot *credit.Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode credit snapshot: %w", err)
	}
	key := snapshotKey(snapshot.TenantID, snapshot.CustomerID, snapshot.ProductCategoryID)
	idx := customerIndexKey(snapshot.TenantID, snapshot.CustomerID)

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, raw, c.ttl)
		pipe.SAdd(ctx, idx, key)
		if c.ttl > 0 {
			// The index outlives its newest entry by at most one ttl.
			pipe.Expire(ctx, idx, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write credit snapshot: %w", err)
	}
	return nil
}

// Invalidate drops one pair
func (c *RedisSnapshotCache) Invalidate(ctx context.Context, tenantID, customerID, categoryID uuid.UUID) error {
	key := snapshotKey(tenantID, customerID, categoryID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, customerIndexKey(tenantID, customerID), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate credit snapshot: %w", err)
	}
	return nil
}

// InvalidateCustomer drops every pair of a customer
func (c *RedisSnapshotCache) InvalidateCustomer(ctx context.Context, tenantID, customerID uuid.UUID) error {
	idx := customerIndexKey(tenantID, customerID)
	keys, err := c.client.SMembers(ctx, idx).Result()
	if err != nil {
		return fmt.Errorf("failed to read credit snapshot index: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, idx)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate customer snapshots: %w", err)
	}
	return nil
}

var _ credit.SnapshotCache = (*RedisSnapshotCache)(nil)
