// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

package zoomapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/videoconf-tools/zoomclient/pkg/cache"
)

// Token cache policy. Zoom access tokens live for one hour; the absolute
// TTL keeps a margin under that, and the sliding TTL drops tokens for
// accounts that have gone idle.
const (
	TokenAbsoluteTTL = 55 * time.Minute
	TokenSlidingTTL  = 15 * time.Minute
)

// TokenProvider obtains Zoom Server-to-Server OAuth tokens and caches the
// composed "{type} {token}" value in a TTLCache.
//
// There is no single-flight guard: concurrent callers that miss the cache
// may each hit the token endpoint. Zoom tolerates duplicate
// account-credentials grants, so the races only cost an extra request.
type TokenProvider struct {
	accountID   string
	oauthConfig *clientcredentials.Config
	store       cache.TTLCache
	policy      cache.Policy
}

// NewTokenProvider builds a provider for the account-credentials grant.
// Client id and secret are sent via HTTP Basic auth, with the grant type and
// account id as form parameters.
func NewTokenProvider(accountID, clientID, clientSecret, authURL string, store cache.TTLCache) *TokenProvider {
	oauthConfig := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     authURL,
		EndpointParams: url.Values{
			"grant_type": []string{"account_credentials"},
			"account_id": []string{accountID},
		},
		AuthStyle: oauth2.AuthStyleInHeader,
	}

	return &TokenProvider{
		accountID:   accountID,
		oauthConfig: oauthConfig,
		store:       store,
		policy: cache.Policy{
			AbsoluteTTL: TokenAbsoluteTTL,
			SlidingTTL:  TokenSlidingTTL,
		},
	}
}

// cacheKey namespaces tokens per account so one cache can serve several
// client instances.
func (p *TokenProvider) cacheKey() string {
	return "zoom:token:" + p.accountID
}

// Token returns an Authorization header value, refreshing lazily on a cache
// miss. The returned string already includes the token type prefix.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	if token, ok := p.store.TryGet(ctx, p.cacheKey()); ok {
		return token, nil
	}

	tok, err := p.oauthConfig.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch Zoom access token: %w", err)
	}

	// Type() normalizes the token_type field to "Bearer" when absent.
	token := tok.Type() + " " + tok.AccessToken
	p.store.Set(ctx, p.cacheKey(), token, p.policy)

	slog.DebugContext(ctx, "obtained new Zoom access token",
		"account_id", p.accountID,
		"expires", tok.Expiry.Format(time.RFC3339),
	)

	return token, nil
}
