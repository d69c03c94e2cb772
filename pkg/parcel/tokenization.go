package parcel

import (
	"context"
	"time"

	"github.com/oasislabs/parcel-go/pkg/httpx"
)

// MintedToken represents ownership of the assets it consumes; transferring
// the token transfers access to those assets.
type MintedToken struct {
	ID             string    `json:"id"`
	Creator        string    `json:"creator"`
	Owner          string    `json:"owner"`
	Name           string    `json:"name"`
	Transferable   bool      `json:"transferable"`
	ConsumedAssets []string  `json:"consumedAssets"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MintTokenParams describes a token to mint over existing documents.
type MintTokenParams struct {
	Name string `json:"name"`
	// DocumentIDs are consumed by the mint: their access control is
	// superseded by token ownership.
	DocumentIDs  []string `json:"documentIds"`
	Transferable bool     `json:"transferable"`
}

// TokenSearchParams filters a token search.
type TokenSearchParams struct {
	Owner   string `json:"owner,omitempty"`
	Creator string `json:"creator,omitempty"`
}

// TokenizationService mints and transfers asset tokens.
type TokenizationService struct {
	t *httpx.Client
}

// Mint creates a token consuming the named documents.
func (s *TokenizationService) Mint(ctx context.Context, params MintTokenParams) (*MintedToken, error) {
	var out MintedToken
	if err := s.t.Create(ctx, "/tokens", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a token by ID.
func (s *TokenizationService) Get(ctx context.Context, id string) (*MintedToken, error) {
	var out MintedToken
	if err := s.t.Get(ctx, "/tokens/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transfer moves a token, and with it access to its consumed assets, to a
// new owner.
func (s *TokenizationService) Transfer(ctx context.Context, id, recipient string) (*MintedToken, error) {
	body := struct {
		Recipient string `json:"recipient"`
	}{Recipient: recipient}

	var out MintedToken
	if err := s.t.Post(ctx, "/tokens/"+id+"/transfer", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search pages through tokens matching the filter.
func (s *TokenizationService) Search(ctx context.Context, params TokenSearchParams) (*Page[MintedToken], error) {
	var out Page[MintedToken]
	if err := s.t.Search(ctx, "/tokens", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
