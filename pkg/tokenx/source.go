package tokenx

import (
	"fmt"
	"time"

	"github.com/oasislabs/parcel-go/pkg/jwtx"
)

// TokenSource selects a TokenProvider variant. It is a sealed tagged union:
// the variant is explicit in the type, not sniffed from which keys happen to
// be set, and NewProvider matches exhaustively.
type TokenSource interface {
	tokenSource()
}

// StaticTokenSource selects a StaticProvider around a pre-acquired token.
type StaticTokenSource struct {
	Token string
}

// RenewingTokenSource selects a RenewingProvider (client_credentials grant
// with an ES256 client assertion).
type RenewingTokenSource struct {
	ClientID      string
	PrivateKey    jwtx.PrivateJWK
	TokenEndpoint string
	Audience      string
	Scopes        []string
}

// RefreshingTokenSource selects a RefreshingProvider (refresh_token grant
// with opportunistic rotation).
type RefreshingTokenSource struct {
	RefreshToken  string
	TokenEndpoint string
	Audience      string
}

// SelfIssuedTokenSource selects a SelfIssuedProvider (locally signed access
// tokens, no network).
type SelfIssuedTokenSource struct {
	Principal     string
	PrivateKey    jwtx.PrivateJWK
	Scopes        []string
	TokenLifetime time.Duration
}

func (StaticTokenSource) tokenSource()     {}
func (RenewingTokenSource) tokenSource()   {}
func (RefreshingTokenSource) tokenSource() {}
func (SelfIssuedTokenSource) tokenSource() {}

// NewProvider constructs the TokenProvider for a source. An unknown or nil
// source is a configuration error.
func NewProvider(src TokenSource) (TokenProvider, error) {
	switch s := src.(type) {
	case StaticTokenSource:
		return NewStaticProvider(s.Token), nil
	case RenewingTokenSource:
		return NewRenewingProvider(s)
	case RefreshingTokenSource:
		return NewRefreshingProvider(s)
	case SelfIssuedTokenSource:
		return NewSelfIssuedProvider(s)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedSource, src)
	}
}
