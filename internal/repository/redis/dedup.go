package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "storefront:update:"

// UpdateDeduplicator implements repository.UpdateDeduplicator using Redis.
type UpdateDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUpdateDeduplicator creates a new Redis-backed update deduplicator. Seen
// markers expire after ttl.
func NewUpdateDeduplicator(client *redis.Client, ttl time.Duration) *UpdateDeduplicator {
	return &UpdateDeduplicator{
		client: client,
		ttl:    ttl,
	}
}

// MarkSeen sets the marker for the update only if it is absent.
func (d *UpdateDeduplicator) MarkSeen(ctx context.Context, updateID int) (bool, error) {
	key := keyPrefix + strconv.Itoa(updateID)

	ok, err := d.client.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx update: %w", err)
	}

	return ok, nil
}
