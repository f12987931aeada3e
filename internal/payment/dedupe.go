package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper claims confirmation event ids so each is applied once.
type Deduper interface {
	// Claim returns false when eventID was already claimed.
	Claim(ctx context.Context, eventID string) (bool, error)
	// Release drops a claim so a redelivered event can be retried.
	Release(ctx context.Context, eventID string) error
}

const dedupeKeyPrefix = "finetrack:payment:event:"

// RedisDeduper claims ids with SET NX and a TTL.
type RedisDeduper struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisDeduper(client redis.UniversalClient, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (d *RedisDeduper) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, dedupeKeyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim payment event: %w", err)
	}
	return ok, nil
}

func (d *RedisDeduper) Release(ctx context.Context, eventID string) error {
	if err := d.client.Del(ctx, dedupeKeyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("release payment event: %w", err)
	}
	return nil
}

// MemoryDeduper is the single-process fallback used when Redis is not
// configured.
type MemoryDeduper struct {
	mu      sync.Mutex
	ttl     time.Duration
	claimed map[string]time.Time
	now     func() time.Time
}

func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	return &MemoryDeduper{ttl: ttl, claimed: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDeduper) Claim(_ context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if expires, ok := d.claimed[eventID]; ok && now.Before(expires) {
		return false, nil
	}
	d.claimed[eventID] = now.Add(d.ttl)
	d.evict(now)
	return true, nil
}

func (d *MemoryDeduper) Release(_ context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.claimed, eventID)
	return nil
}

// evict drops expired claims; caller holds mu.
func (d *MemoryDeduper) evict(now time.Time) {
	for id, expires := range d.claimed {
		if !now.Before(expires) {
			delete(d.claimed, id)
		}
	}
}
