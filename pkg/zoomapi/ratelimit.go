// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package zoomapi

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateClass buckets Zoom endpoints by the rate-limit category Zoom applies
// to them. Light covers cheap single-resource reads, Medium covers list and
// mutation endpoints, Heavy covers reports, recordings, and uploads.
type RateClass string

const (
	RateClassLight  RateClass = "light"
	RateClassMedium RateClass = "medium"
	RateClassHeavy  RateClass = "heavy"
)

// RateLimitConfig holds the token-bucket parameters for one request class.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// defaultRateLimits stays well under Zoom's published per-class limits.
var defaultRateLimits = map[RateClass]RateLimitConfig{
	RateClassLight:  {RequestsPerSecond: 10.0, BurstSize: 10},
	RateClassMedium: {RequestsPerSecond: 5.0, BurstSize: 5},
	RateClassHeavy:  {RequestsPerSecond: 1.0, BurstSize: 2},
}

// rateLimiter gates requests of one class. It combines a token bucket with a
// hold-off period set from Retry-After headers on 429 responses.
type rateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	return &rateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// wait blocks until a request may be sent, honoring any hold-off recorded
// from a previous 429 before consuming a bucket token.
func (r *rateLimiter) wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if until := time.Until(retryAt); until > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(until):
		}
	}

	return r.limiter.Wait(ctx)
}

// recordRetryAfter sets a hold-off period from a 429 response's Retry-After
// header. A missing or unparsable header defaults to 60 seconds.
func (r *rateLimiter) recordRetryAfter(header string) {
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		seconds = 60
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(time.Duration(seconds) * time.Second)
}

// rateLimiters holds one limiter per request class.
type rateLimiters map[RateClass]*rateLimiter

func newRateLimiters(overrides map[RateClass]RateLimitConfig) rateLimiters {
	limiters := make(rateLimiters, len(defaultRateLimits))
	for class, cfg := range defaultRateLimits {
		if override, ok := overrides[class]; ok {
			cfg = override
		}
		limiters[class] = newRateLimiter(cfg)
	}
	return limiters
}

func (l rateLimiters) wait(ctx context.Context, class RateClass) error {
	limiter, ok := l[class]
	if !ok {
		limiter = l[RateClassMedium]
	}
	return limiter.wait(ctx)
}

// observe records rate-limit feedback from a response.
func (l rateLimiters) observe(class RateClass, resp *http.Response) {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return
	}
	if limiter, ok := l[class]; ok {
		limiter.recordRetryAfter(resp.Header.Get("Retry-After"))
	}
}
