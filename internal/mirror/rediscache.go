package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Partition is a redis-backed cache partition holding the JSON-encoded last
// snapshot of one collection, keyed by tenant and partition name. It
// survives process restarts and is the offline source of truth.
type Partition[T any] struct {
	client redis.UniversalClient
	key    string
}

// NewPartition builds the partition for a tenant-scoped collection.
func NewPartition[T any](client redis.UniversalClient, tenantID, name string) *Partition[T] {
	return &Partition[T]{
		client: client,
		key:    fmt.Sprintf("stockdesk:cache:%s:%s", tenantID, name),
	}
}

// Load returns the cached snapshot, ok=false when never cached.
func (p *Partition[T]) Load(ctx context.Context) ([]T, bool, error) {
	raw, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("mirror: cache get %s: %w", p.key, err)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("mirror: cache decode %s: %w", p.key, err)
	}
	return items, true, nil
}

// Store overwrites the partition with the snapshot. No TTL: the cache must
// outlive arbitrarily long offline periods.
func (p *Partition[T]) Store(ctx context.Context, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("mirror: cache encode %s: %w", p.key, err)
	}
	if err := p.client.Set(ctx, p.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("mirror: cache set %s: %w", p.key, err)
	}
	return nil
}
