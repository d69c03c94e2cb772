package tokenx

import (
	"context"
	"sync"
	"time"
)

const (
	// PlatformAudience is the audience claim the platform expects on
	// self-issued access tokens.
	PlatformAudience = "https://api.oasislabs.com/parcel"

	// AssertionLifetime is the fixed lifetime of client-assertion JWTs.
	AssertionLifetime = time.Hour

	// DefaultTokenLifetime is the lifetime of self-issued access tokens
	// when the caller does not configure one.
	DefaultTokenLifetime = time.Hour
)

// TokenProvider yields a bearer token for the Authorization header. GetToken
// may perform a network round-trip against the token endpoint when the
// cached token is missing or expired.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}

// StaticProvider wraps a fixed bearer string that never expires.
type StaticProvider struct {
	token string
}

// NewStaticProvider creates a provider around a pre-acquired token.
func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{token: token}
}

func (p *StaticProvider) GetToken(context.Context) (string, error) {
	return p.token, nil
}

// tokenCache holds the single cached token shared by the expiring providers
// and coalesces concurrent renewals: the fast path reads under an RLock, and
// renewal runs under the write lock with a double-check so two callers
// hitting an expired cache trigger exactly one renewal. On renewal failure
// the cache stays empty so the next call retries.
type tokenCache struct {
	mu  sync.RWMutex
	tok *Token
	now func() time.Time
}

func (c *tokenCache) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *tokenCache) get(ctx context.Context, renew func(ctx context.Context) (Token, error)) (string, error) {
	c.mu.RLock()
	if c.tok != nil && !c.tok.IsExpiredAt(c.clock()) {
		value := c.tok.String()
		c.mu.RUnlock()
		return value, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have renewed while we waited for the write lock.
	if c.tok != nil && !c.tok.IsExpiredAt(c.clock()) {
		return c.tok.String(), nil
	}

	tok, err := renew(ctx)
	if err != nil {
		return "", err
	}

	c.tok = &tok
	return tok.String(), nil
}
