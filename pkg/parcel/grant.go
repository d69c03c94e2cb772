package parcel

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oasislabs/parcel-go/pkg/httpx"
)

// Capability names what a grant allows.
type Capability string

const (
	CapabilityRead    Capability = "read"
	CapabilityExtend  Capability = "extend"
	CapabilityExecute Capability = "execute"
)

// Grant lets a grantee access the granter's documents that match a
// condition.
type Grant struct {
	ID           string          `json:"id"`
	Granter      string          `json:"granter"`
	Grantee      string          `json:"grantee"`
	Condition    json.RawMessage `json:"condition,omitempty"`
	Capabilities []Capability    `json:"capabilities,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// GrantCreateParams describes a new grant from the caller to a grantee.
type GrantCreateParams struct {
	Grantee      string          `json:"grantee"`
	Condition    json.RawMessage `json:"condition,omitempty"`
	Capabilities []Capability    `json:"capabilities,omitempty"`
}

// GrantService manages grants.
type GrantService struct {
	t *httpx.Client
}

// Create issues a new grant with the caller as granter.
func (s *GrantService) Create(ctx context.Context, params GrantCreateParams) (*Grant, error) {
	var out Grant
	if err := s.t.Create(ctx, "/grants", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a single grant by ID.
func (s *GrantService) Get(ctx context.Context, id string) (*Grant, error) {
	var out Grant
	if err := s.t.Get(ctx, "/grants/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete revokes a grant.
func (s *GrantService) Delete(ctx context.Context, id string) error {
	return s.t.Delete(ctx, "/grants/"+id)
}

// List pages through the grants the caller is party to.
func (s *GrantService) List(ctx context.Context, params ListParams) (*Page[Grant], error) {
	var out Page[Grant]
	if err := s.t.Get(ctx, "/grants", params.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
