package tokenx

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oasislabs/parcel-go/pkg/jwtx"
)

// RenewingProvider obtains access tokens through the OAuth2
// client_credentials grant, authenticating with a short-lived ES256 client
// assertion instead of a client secret.
type RenewingProvider struct {
	clientID      string
	tokenEndpoint string
	audience      string
	scopes        []string
	signer        jwtx.Signer
	httpClient    *http.Client
	cache         tokenCache
}

// NewRenewingProvider builds a provider from its source parameters. The
// private key must be an EC P-256 key with alg ES256; anything else fails
// here, not at first renewal.
func NewRenewingProvider(src RenewingTokenSource) (*RenewingProvider, error) {
	signer, err := jwtx.NewSignerFromJWK(src.PrivateKey)
	if err != nil {
		return nil, err
	}

	return &RenewingProvider{
		clientID:      src.ClientID,
		tokenEndpoint: src.TokenEndpoint,
		audience:      src.Audience,
		scopes:        src.Scopes,
		signer:        signer,
		httpClient:    defaultHTTPClient(),
	}, nil
}

// GetToken returns the cached token, renewing through the token endpoint
// when missing or expired. Concurrent callers share a single renewal.
func (p *RenewingProvider) GetToken(ctx context.Context) (string, error) {
	return p.cache.get(ctx, p.renew)
}

func (p *RenewingProvider) renew(ctx context.Context) (Token, error) {
	claims := jwtx.NewAssertionClaims(
		p.clientID,
		p.tokenEndpoint,
		"",
		AssertionLifetime,
		time.Now(),
	)

	assertion, err := p.signer.Sign(claims)
	if err != nil {
		return Token{}, err
	}

	form := url.Values{
		"grant_type":            {"client_credentials"},
		"client_assertion":      {assertion},
		"client_assertion_type": {ClientAssertionType},
	}
	if len(p.scopes) > 0 {
		form.Set("scope", strings.Join(p.scopes, " "))
	}
	if p.audience != "" {
		form.Set("audience", p.audience)
	}

	tr, requestedAt, err := postGrant(ctx, p.httpClient, p.tokenEndpoint, form)
	if err != nil {
		return Token{}, err
	}

	expiry := requestedAt.Add(time.Duration(tr.ExpiresIn) * time.Second)
	return NewToken(tr.AccessToken, expiry), nil
}
