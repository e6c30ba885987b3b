// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/videoconf-tools/zoomclient/internal/logging"
)

// KVBucketName is the suggested NATS KV bucket name for token entries.
const KVBucketName = "zoom-tokens"

// KeyValue is the subset of jetstream.KeyValue the cache needs. The narrow
// interface allows tests to run against a mock instead of a live server.
type KeyValue interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
}

// NatsKV is a TTLCache backed by a NATS JetStream key-value bucket. It lets
// multiple replicas of an application share one token instead of each
// minting its own. Entries are msgpack-encoded and carry their own
// deadlines; expiry is enforced on read rather than by the bucket.
type NatsKV struct {
	kv  KeyValue
	now func() time.Time
}

// NewNatsKV creates a cache over an existing KV bucket.
func NewNatsKV(kv KeyValue) *NatsKV {
	return &NatsKV{
		kv:  kv,
		now: time.Now,
	}
}

// TryGet returns the live value for key, renewing its sliding deadline.
// KV errors are treated as misses so callers fall through to a refresh.
func (c *NatsKV) TryGet(ctx context.Context, key string) (string, bool) {
	kvEntry, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, jetstream.ErrKeyNotFound) {
			slog.WarnContext(ctx, "token cache read failed, treating as miss",
				"key", key, logging.ErrKey, err)
		}
		return "", false
	}

	var e entry
	if err := msgpack.Unmarshal(kvEntry.Value(), &e); err != nil {
		slog.WarnContext(ctx, "token cache entry is not decodable, dropping it",
			"key", key, logging.ErrKey, err)
		_ = c.kv.Delete(ctx, key)
		return "", false
	}

	now := c.now()
	if e.expired(now) {
		_ = c.kv.Delete(ctx, key)
		return "", false
	}

	// Re-put to persist the renewed sliding deadline. Losing the race with
	// a concurrent writer only shortens the idle window, never extends it.
	if e.SlidingTTL > 0 {
		e.slide(now)
		if data, err := msgpack.Marshal(&e); err == nil {
			if _, err := c.kv.Put(ctx, key, data); err != nil {
				slog.DebugContext(ctx, "failed to renew sliding deadline",
					"key", key, logging.ErrKey, err)
			}
		}
	}

	return e.Value, true
}

// Set stores value under key, replacing any existing entry.
func (c *NatsKV) Set(ctx context.Context, key, value string, policy Policy) {
	e := newEntry(value, policy, c.now())
	data, err := msgpack.Marshal(&e)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode token cache entry",
			"key", key, logging.ErrKey, err)
		return
	}
	if _, err := c.kv.Put(ctx, key, data); err != nil {
		slog.WarnContext(ctx, "token cache write failed",
			"key", key, logging.ErrKey, err)
	}
}

var _ TTLCache = (*NatsKV)(nil)
