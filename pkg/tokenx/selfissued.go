package tokenx

import (
	"context"
	"strings"
	"time"

	"github.com/oasislabs/parcel-go/pkg/jwtx"
)

// SelfIssuedProvider mints access tokens locally by signing them with the
// principal's own key. No network call is involved; the platform verifies
// the signature against the public key registered for the principal.
type SelfIssuedProvider struct {
	principal string
	scope     string
	lifetime  time.Duration
	signer    jwtx.Signer
	cache     tokenCache
}

// NewSelfIssuedProvider builds a provider from its source parameters. The
// private key must be an EC P-256 key with alg ES256.
func NewSelfIssuedProvider(src SelfIssuedTokenSource) (*SelfIssuedProvider, error) {
	signer, err := jwtx.NewSignerFromJWK(src.PrivateKey)
	if err != nil {
		return nil, err
	}

	lifetime := src.TokenLifetime
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}

	return &SelfIssuedProvider{
		principal: src.Principal,
		scope:     strings.Join(src.Scopes, " "),
		lifetime:  lifetime,
		signer:    signer,
	}, nil
}

// GetToken returns the cached token, signing a fresh one when missing or
// expired.
func (p *SelfIssuedProvider) GetToken(ctx context.Context) (string, error) {
	return p.cache.get(ctx, p.renew)
}

func (p *SelfIssuedProvider) renew(context.Context) (Token, error) {
	now := time.Now()

	claims := jwtx.NewAssertionClaims(
		p.principal,
		PlatformAudience,
		p.scope,
		p.lifetime,
		now,
	)

	value, err := p.signer.Sign(claims)
	if err != nil {
		return Token{}, err
	}

	return NewToken(value, now.Add(p.lifetime)), nil
}
