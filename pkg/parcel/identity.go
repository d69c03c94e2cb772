package parcel

import (
	"context"
	"time"

	"github.com/oasislabs/parcel-go/pkg/httpx"
	"github.com/oasislabs/parcel-go/pkg/jwtx"
)

// Identity is a principal on the platform: a user or an autonomous app.
type Identity struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// TokenVerifier binds a signing key to the issuer/subject pair whose
// self-issued tokens it authenticates.
type TokenVerifier struct {
	Sub       string   `json:"sub"`
	Iss       string   `json:"iss"`
	PublicKey jwtx.JWK `json:"publicKey"`
}

// IdentityCreateParams registers a new identity and the verifiers for its
// self-issued tokens.
type IdentityCreateParams struct {
	TokenVerifiers []TokenVerifier `json:"tokenVerifiers"`
}

// IdentityUpdateParams replaces the mutable fields of an identity.
type IdentityUpdateParams struct {
	TokenVerifiers []TokenVerifier `json:"tokenVerifiers"`
}

// IdentityService manages identities.
type IdentityService struct {
	t *httpx.Client
}

// Create registers a new identity.
func (s *IdentityService) Create(ctx context.Context, params IdentityCreateParams) (*Identity, error) {
	var out Identity
	if err := s.t.Create(ctx, "/identities", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCurrent returns the identity of the caller's credentials.
func (s *IdentityService) GetCurrent(ctx context.Context) (*Identity, error) {
	var out Identity
	if err := s.t.Get(ctx, "/identities/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a single identity by ID.
func (s *IdentityService) Get(ctx context.Context, id string) (*Identity, error) {
	var out Identity
	if err := s.t.Get(ctx, "/identities/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the mutable fields of an identity.
func (s *IdentityService) Update(ctx context.Context, id string, params IdentityUpdateParams) (*Identity, error) {
	var out Identity
	if err := s.t.Update(ctx, "/identities/"+id, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an identity.
func (s *IdentityService) Delete(ctx context.Context, id string) error {
	return s.t.Delete(ctx, "/identities/"+id)
}
