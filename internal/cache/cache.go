// Package cache provides the key-value store behind the artwork and timeline
// caches. Entries carry an absolute expiry; a Bucket scopes keys to a
// namespace with its own freshness window.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrEmptyKey = errors.New("cache key must not be empty")

// Store is a raw byte store with per-entry TTL. Implementations must treat
// expired entries as absent. Concurrent writes to one key are last writer
// wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Recorder receives hit/miss/error observations. *metrics.Metrics satisfies it.
type Recorder interface {
	CacheLookup(namespace, result string)
}

// Bucket is a namespaced view over a Store with a default TTL.
type Bucket struct {
	store     Store
	namespace string
	ttl       time.Duration
	recorder  Recorder
}

func NewBucket(store Store, namespace string, ttl time.Duration, recorder Recorder) *Bucket {
	return &Bucket{store: store, namespace: namespace, ttl: ttl, recorder: recorder}
}

func (b *Bucket) Namespace() string   { return b.namespace }
func (b *Bucket) TTL() time.Duration  { return b.ttl }
func (b *Bucket) key(k string) string { return b.namespace + ":" + k }

// GetJSON decodes the entry under key into dst. It reports false on a miss.
func (b *Bucket) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := b.store.Get(ctx, b.key(key))
	if err != nil {
		b.record("error")
		return false, fmt.Errorf("cache get %s: %w", b.key(key), err)
	}
	if !ok {
		b.record("miss")
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		b.record("error")
		return false, fmt.Errorf("cache decode %s: %w", b.key(key), err)
	}
	b.record("hit")
	return true, nil
}

// SetJSON stores v under key with the bucket TTL.
func (b *Bucket) SetJSON(ctx context.Context, key string, v any) error {
	return b.SetJSONWithTTL(ctx, key, v, b.ttl)
}

func (b *Bucket) SetJSONWithTTL(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", b.key(key), err)
	}
	if err := b.store.Set(ctx, b.key(key), raw, ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", b.key(key), err)
	}
	return nil
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	return b.store.Delete(ctx, b.key(key))
}

func (b *Bucket) record(result string) {
	if b.recorder != nil {
		b.recorder.CacheLookup(b.namespace, result)
	}
}
