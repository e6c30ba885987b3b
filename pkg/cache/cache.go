// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

// Package cache provides the TTL cache capability consumed by the Zoom
// client's token provider. The client depends only on the TTLCache
// interface; implementations decide where entries live.
package cache

import (
	"context"
	"time"
)

// Policy describes how long a cached entry stays valid.
//
// AbsoluteTTL is a hard upper bound on the entry's lifetime. SlidingTTL is
// an idle timeout renewed on every read; it never extends an entry past its
// absolute deadline. A zero SlidingTTL disables sliding expiration.
type Policy struct {
	AbsoluteTTL time.Duration
	SlidingTTL  time.Duration
}

// TTLCache is a string key-value cache with absolute and sliding expiration.
type TTLCache interface {
	// TryGet returns the value for key and whether it was present and
	// unexpired. Reading a live entry renews its sliding deadline.
	TryGet(ctx context.Context, key string) (string, bool)

	// Set stores value under key with the given expiration policy,
	// replacing any existing entry.
	Set(ctx context.Context, key, value string, policy Policy)
}

// entry is the stored form shared by the cache implementations.
type entry struct {
	Value            string    `msgpack:"value"`
	AbsoluteDeadline time.Time `msgpack:"absolute_deadline"`
	SlidingDeadline  time.Time `msgpack:"sliding_deadline"`
	SlidingTTL       int64     `msgpack:"sliding_ttl_ns"`
}

// expired reports whether the entry is past either deadline at now.
func (e *entry) expired(now time.Time) bool {
	if !e.AbsoluteDeadline.IsZero() && now.After(e.AbsoluteDeadline) {
		return true
	}
	if !e.SlidingDeadline.IsZero() && now.After(e.SlidingDeadline) {
		return true
	}
	return false
}

// slide renews the sliding deadline, clamped to the absolute deadline.
func (e *entry) slide(now time.Time) {
	if e.SlidingTTL <= 0 {
		return
	}
	deadline := now.Add(time.Duration(e.SlidingTTL))
	if !e.AbsoluteDeadline.IsZero() && deadline.After(e.AbsoluteDeadline) {
		deadline = e.AbsoluteDeadline
	}
	e.SlidingDeadline = deadline
}

// newEntry builds the stored form of a value under the given policy.
func newEntry(value string, policy Policy, now time.Time) entry {
	e := entry{
		Value:      value,
		SlidingTTL: int64(policy.SlidingTTL),
	}
	if policy.AbsoluteTTL > 0 {
		e.AbsoluteDeadline = now.Add(policy.AbsoluteTTL)
	}
	e.slide(now)
	return e
}
