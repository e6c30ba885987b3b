// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package zoomapi

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestRecordRetryAfter(t *testing.T) {
	tests := []struct {
		name            string
		header          string
		expectedSeconds int
	}{
		{name: "numeric header", header: "30", expectedSeconds: 30},
		{name: "missing header defaults to 60", header: "", expectedSeconds: 60},
		{name: "unparsable header defaults to 60", header: "Wed, 02 Sep 2026 10:00:00 GMT", expectedSeconds: 60},
		{name: "negative header defaults to 60", header: "-5", expectedSeconds: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := newRateLimiter(defaultRateLimits[RateClassLight])
			before := time.Now()
			limiter.recordRetryAfter(tt.header)

			expected := before.Add(time.Duration(tt.expectedSeconds) * time.Second)
			if limiter.retryAt.Before(expected) || limiter.retryAt.After(expected.Add(time.Second)) {
				t.Errorf("expected hold-off around %v, got %v", expected, limiter.retryAt)
			}
		})
	}
}

func TestRateLimiterWait_HoldOffRespectsContext(t *testing.T) {
	limiter := newRateLimiter(defaultRateLimits[RateClassLight])
	limiter.recordRetryAfter("60")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := limiter.wait(ctx)
	if err == nil {
		t.Fatal("expected context error while held off")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("wait did not return promptly on cancellation, took %v", elapsed)
	}
}

func TestRateLimiterWait_NoHoldOff(t *testing.T) {
	limiter := newRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 10})

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := limiter.wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("burst-sized requests should not block, took %v", elapsed)
	}
}

func TestNewRateLimiters(t *testing.T) {
	t.Run("covers every class", func(t *testing.T) {
		limiters := newRateLimiters(nil)
		for _, class := range []RateClass{RateClassLight, RateClassMedium, RateClassHeavy} {
			if limiters[class] == nil {
				t.Errorf("expected a limiter for class %s", class)
			}
		}
	})

	t.Run("applies overrides", func(t *testing.T) {
		limiters := newRateLimiters(map[RateClass]RateLimitConfig{
			RateClassHeavy: {RequestsPerSecond: 2.0, BurstSize: 4},
		})
		if burst := limiters[RateClassHeavy].limiter.Burst(); burst != 4 {
			t.Errorf("expected overridden burst 4, got %d", burst)
		}
		if burst := limiters[RateClassMedium].limiter.Burst(); burst != defaultRateLimits[RateClassMedium].BurstSize {
			t.Errorf("expected default medium burst, got %d", burst)
		}
	})

	t.Run("unknown class falls back to medium", func(t *testing.T) {
		limiters := newRateLimiters(nil)
		if err := limiters.wait(context.Background(), RateClass("unknown")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestRateLimitersObserve(t *testing.T) {
	limiters := newRateLimiters(nil)

	okResp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}
	limiters.observe(RateClassMedium, okResp)
	if !limiters[RateClassMedium].retryAt.IsZero() {
		t.Error("2xx response must not set a hold-off")
	}

	throttled := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{"Retry-After": []string{"15"}},
	}
	limiters.observe(RateClassMedium, throttled)
	if limiters[RateClassMedium].retryAt.IsZero() {
		t.Error("429 response must set a hold-off")
	}
	if !limiters[RateClassLight].retryAt.IsZero() {
		t.Error("hold-off must only apply to the observed class")
	}
}
