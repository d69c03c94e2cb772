package tokenx

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// RefreshingProvider obtains access tokens through the OAuth2 refresh_token
// grant. The stored refresh token rotates whenever the endpoint returns a
// replacement; renewal runs under the cache's write lock, so a rotated token
// can never be raced by a concurrent renewal and burned twice.
type RefreshingProvider struct {
	tokenEndpoint string
	audience      string
	httpClient    *http.Client
	cache         tokenCache

	// refreshToken is guarded by cache.mu.
	refreshToken string
}

// NewRefreshingProvider builds a provider from its source parameters.
func NewRefreshingProvider(src RefreshingTokenSource) (*RefreshingProvider, error) {
	if src.RefreshToken == "" {
		return nil, &TokenError{Code: ErrorCodeInvalidGrant, Description: "refresh token is empty"}
	}

	return &RefreshingProvider{
		tokenEndpoint: src.TokenEndpoint,
		audience:      src.Audience,
		httpClient:    defaultHTTPClient(),
		refreshToken:  src.RefreshToken,
	}, nil
}

// GetToken returns the cached token, exchanging the refresh token for a new
// one when missing or expired.
func (p *RefreshingProvider) GetToken(ctx context.Context) (string, error) {
	return p.cache.get(ctx, p.renew)
}

// RefreshToken returns the current (possibly rotated) refresh token so the
// caller can persist it across processes.
func (p *RefreshingProvider) RefreshToken() string {
	p.cache.mu.RLock()
	defer p.cache.mu.RUnlock()
	return p.refreshToken
}

func (p *RefreshingProvider) renew(ctx context.Context) (Token, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {p.refreshToken},
	}
	if p.audience != "" {
		form.Set("audience", p.audience)
	}

	tr, requestedAt, err := postGrant(ctx, p.httpClient, p.tokenEndpoint, form)
	if err != nil {
		return Token{}, err
	}

	// Rotate opportunistically: servers that issue single-use refresh
	// tokens return the replacement here. A response without one keeps the
	// current token.
	if tr.RefreshToken != "" {
		p.refreshToken = tr.RefreshToken
	}

	expiry := requestedAt.Add(time.Duration(tr.ExpiresIn) * time.Second)
	return NewToken(tr.AccessToken, expiry), nil
}
