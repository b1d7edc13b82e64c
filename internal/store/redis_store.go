package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/srujanab94/acp-commerce/internal/domain"
)

// RedisStore implements Store on top of Redis with JSON values. Checkouts
// expire through the key TTL rather than a sweep.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultCheckoutTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisStore) Put(ctx context.Context, c *domain.Checkout) error {
	return r.set(ctx, c)
}

func (r *RedisStore) Get(ctx context.Context, id string) (*domain.Checkout, error) {
	data, err := r.client.Get(ctx, checkoutKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCheckoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var c domain.Checkout
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal checkout failed: %w", err)
	}
	return &c, nil
}

// maxUpdateRetries bounds the optimistic retry loop when concurrent
// writers keep invalidating the watched key.
const maxUpdateRetries = 64

// Update applies fn under WATCH so a write that races another mutation of
// the same checkout is retried instead of silently overwriting it.
func (r *RedisStore) Update(ctx context.Context, id string, fn func(c *domain.Checkout) error) (*domain.Checkout, error) {
	key := checkoutKey(id)

	var updated *domain.Checkout
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrCheckoutNotFound
		}
		if err != nil {
			return fmt.Errorf("redis get failed: %w", err)
		}

		var c domain.Checkout
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("unmarshal checkout failed: %w", err)
		}
		if err := fn(&c); err != nil {
			return err
		}

		out, err := json.Marshal(&c)
		if err != nil {
			return fmt.Errorf("marshal checkout failed: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = &c
		return nil
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("redis update of %s aborted after %d conflicts", id, maxUpdateRetries)
}

func (r *RedisStore) set(ctx context.Context, c *domain.Checkout) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal checkout failed: %w", err)
	}

	if err := r.client.Set(ctx, checkoutKey(c.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func checkoutKey(id string) string {
	return fmt.Sprintf("checkout:%s", id)
}
