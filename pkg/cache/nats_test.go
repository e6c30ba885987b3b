// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockKeyValueEntry implements jetstream.KeyValueEntry for testing
type mockKeyValueEntry struct {
	key   string
	value []byte
}

func (m *mockKeyValueEntry) Key() string                     { return m.key }
func (m *mockKeyValueEntry) Value() []byte                   { return m.value }
func (m *mockKeyValueEntry) Revision() uint64                { return 1 }
func (m *mockKeyValueEntry) Created() time.Time              { return time.Now() }
func (m *mockKeyValueEntry) Delta() uint64                   { return 0 }
func (m *mockKeyValueEntry) Operation() jetstream.KeyValueOp { return jetstream.KeyValuePut }
func (m *mockKeyValueEntry) Bucket() string                  { return "test-bucket" }

// mockKeyValue implements KeyValue for testing
type mockKeyValue struct {
	data     map[string][]byte
	getError error
	putError error
	puts     int
}

func newMockKeyValue() *mockKeyValue {
	return &mockKeyValue{data: make(map[string][]byte)}
}

func (m *mockKeyValue) Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	value, ok := m.data[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return &mockKeyValueEntry{key: key, value: value}, nil
}

func (m *mockKeyValue) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	if m.putError != nil {
		return 0, m.putError
	}
	m.puts++
	m.data[key] = value
	return uint64(m.puts), nil
}

func (m *mockKeyValue) Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error {
	delete(m.data, key)
	return nil
}

func TestNatsKV_SetAndTryGet(t *testing.T) {
	kv := newMockKeyValue()
	c := NewNatsKV(kv)
	ctx := context.Background()

	c.Set(ctx, "zoom:token:acct", "Bearer abc123", Policy{AbsoluteTTL: 55 * time.Minute})

	value, ok := c.TryGet(ctx, "zoom:token:acct")
	require.True(t, ok)
	assert.Equal(t, "Bearer abc123", value)
}

func TestNatsKV_MissIsNotAnError(t *testing.T) {
	c := NewNatsKV(newMockKeyValue())

	_, ok := c.TryGet(context.Background(), "absent")
	assert.False(t, ok)
}

func TestNatsKV_KVErrorTreatedAsMiss(t *testing.T) {
	kv := newMockKeyValue()
	kv.getError = context.DeadlineExceeded
	c := NewNatsKV(kv)

	_, ok := c.TryGet(context.Background(), "k")
	assert.False(t, ok)
}

func TestNatsKV_UndecodableEntryDropped(t *testing.T) {
	kv := newMockKeyValue()
	kv.data["k"] = []byte("not msgpack at all")
	c := NewNatsKV(kv)

	_, ok := c.TryGet(context.Background(), "k")
	assert.False(t, ok)
	assert.NotContains(t, kv.data, "k")
}

func TestNatsKV_AbsoluteExpiration(t *testing.T) {
	kv := newMockKeyValue()
	c := NewNatsKV(kv)
	ctx := context.Background()

	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set(ctx, "k", "v", Policy{AbsoluteTTL: 55 * time.Minute})

	current = current.Add(56 * time.Minute)
	_, ok := c.TryGet(ctx, "k")
	assert.False(t, ok)
	assert.NotContains(t, kv.data, "k", "expired entry should be deleted on read")
}

func TestNatsKV_SlidingRenewalPersisted(t *testing.T) {
	kv := newMockKeyValue()
	c := NewNatsKV(kv)
	ctx := context.Background()

	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set(ctx, "k", "v", Policy{AbsoluteTTL: time.Hour, SlidingTTL: 15 * time.Minute})
	putsAfterSet := kv.puts

	current = current.Add(10 * time.Minute)
	_, ok := c.TryGet(ctx, "k")
	require.True(t, ok)
	assert.Greater(t, kv.puts, putsAfterSet, "read should re-put the slid entry")

	// Another 10 idle minutes is fine because the previous read renewed
	// the window; 16 idle minutes is not.
	current = current.Add(10 * time.Minute)
	_, ok = c.TryGet(ctx, "k")
	require.True(t, ok)

	current = current.Add(16 * time.Minute)
	_, ok = c.TryGet(ctx, "k")
	assert.False(t, ok)
}
