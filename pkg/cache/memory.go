// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process TTLCache. It is safe for concurrent use and is the
// default cache used by the Zoom client when none is injected.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// TryGet returns the live value for key, renewing its sliding deadline.
// Expired entries are removed on access.
func (m *Memory) TryGet(ctx context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false
	}

	now := m.now()
	if e.expired(now) {
		delete(m.entries, key)
		return "", false
	}

	e.slide(now)
	return e.Value, true
}

// Set stores value under key, replacing any existing entry.
func (m *Memory) Set(ctx context.Context, key, value string, policy Policy) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := newEntry(value, policy, m.now())
	m.entries[key] = &e
}

var _ TTLCache = (*Memory)(nil)
