// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package zoomapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/videoconf-tools/zoomclient/pkg/cache"
)

func newTokenEndpoint(t *testing.T, tokenCalls *int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}

		*tokenCalls++

		// Server-to-Server OAuth authenticates the app via Basic auth and
		// carries the grant type and account in the form body.
		username, password, ok := r.BasicAuth()
		if !ok {
			t.Error("expected Basic auth on the token request")
		}
		if username != "test-client" || password != "test-secret" {
			t.Errorf("unexpected Basic auth credentials %s:%s", username, password)
		}

		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse token request form: %v", err)
		}
		if grantType := r.Form.Get("grant_type"); grantType != "account_credentials" {
			t.Errorf("expected grant_type 'account_credentials', got %q", grantType)
		}
		if accountID := r.Form.Get("account_id"); accountID != "test-account" {
			t.Errorf("expected account_id 'test-account', got %q", accountID)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestTokenProvider_ComposesTypeAndToken(t *testing.T) {
	tokenCalls := 0
	server := newTokenEndpoint(t, &tokenCalls,
		`{"access_token": "abc123", "token_type": "bearer", "expires_in": 3600}`)
	defer server.Close()

	provider := NewTokenProvider("test-account", "test-client", "test-secret",
		server.URL+"/oauth/token", cache.NewMemory())

	token, err := provider.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// oauth2 normalizes the lowercase token_type.
	if token != "Bearer abc123" {
		t.Errorf("expected composed token 'Bearer abc123', got %q", token)
	}
	if tokenCalls != 1 {
		t.Errorf("expected 1 token endpoint call, got %d", tokenCalls)
	}
}

func TestTokenProvider_CachesWithinTTL(t *testing.T) {
	tokenCalls := 0
	server := newTokenEndpoint(t, &tokenCalls,
		`{"access_token": "abc123", "token_type": "Bearer", "expires_in": 3600}`)
	defer server.Close()

	store := cache.NewMemory()
	provider := NewTokenProvider("test-account", "test-client", "test-secret",
		server.URL+"/oauth/token", store)

	ctx := context.Background()

	first, err := provider.Token(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokenCalls != 1 {
		t.Fatalf("expected exactly 1 token endpoint call on miss, got %d", tokenCalls)
	}

	// Cache stores the composed "{type} {token}" value.
	cached, ok := store.TryGet(ctx, "zoom:token:test-account")
	if !ok {
		t.Fatal("expected token to be cached")
	}
	if cached != "Bearer abc123" {
		t.Errorf("expected cached value 'Bearer abc123', got %q", cached)
	}

	for i := 0; i < 5; i++ {
		token, err := provider.Token(ctx)
		if err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
		if token != first {
			t.Errorf("expected cached token %q, got %q", first, token)
		}
	}

	if tokenCalls != 1 {
		t.Errorf("expected zero additional token endpoint calls within TTL, got %d total", tokenCalls)
	}
}

func TestTokenProvider_EndpointFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"reason": "Invalid client credentials"}`))
	}))
	defer server.Close()

	provider := NewTokenProvider("test-account", "bad-client", "bad-secret",
		server.URL+"/oauth/token", cache.NewMemory())

	_, err := provider.Token(context.Background())
	if err == nil {
		t.Fatal("expected error from token endpoint")
	}
	if !strings.Contains(err.Error(), "failed to fetch Zoom access token") {
		t.Errorf("expected wrapped token fetch error, got: %v", err)
	}
}

func TestTokenProvider_SharedCacheAcrossProviders(t *testing.T) {
	tokenCalls := 0
	server := newTokenEndpoint(t, &tokenCalls,
		`{"access_token": "abc123", "token_type": "Bearer", "expires_in": 3600}`)
	defer server.Close()

	store := cache.NewMemory()
	ctx := context.Background()

	first := NewTokenProvider("test-account", "test-client", "test-secret",
		server.URL+"/oauth/token", store)
	second := NewTokenProvider("test-account", "test-client", "test-secret",
		server.URL+"/oauth/token", store)

	if _, err := first.Token(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := second.Token(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tokenCalls != 1 {
		t.Errorf("expected providers sharing a cache to share the token, got %d calls", tokenCalls)
	}
}
