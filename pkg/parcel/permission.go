package parcel

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oasislabs/parcel-go/pkg/httpx"
)

// Permission is a grant template attached to an app: when a user joins the
// app, each of its permissions becomes a concrete grant from the user.
type Permission struct {
	ID          string          `json:"id"`
	AppID       string          `json:"appId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Grants      []GrantTemplate `json:"grants"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// GrantTemplate is a grant with the granter left open; "participant" refers
// to the joining user.
type GrantTemplate struct {
	Granter      string          `json:"granter"`
	Grantee      string          `json:"grantee,omitempty"`
	Condition    json.RawMessage `json:"condition,omitempty"`
	Capabilities []Capability    `json:"capabilities,omitempty"`
}

// PermissionCreateParams describes a new permission on an app.
type PermissionCreateParams struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Grants      []GrantTemplate `json:"grants"`
}

// PermissionService manages the permissions of an app.
type PermissionService struct {
	t *httpx.Client
}

// Create attaches a new permission to an app.
func (s *PermissionService) Create(ctx context.Context, appID string, params PermissionCreateParams) (*Permission, error) {
	var out Permission
	if err := s.t.Create(ctx, "/apps/"+appID+"/permissions", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a single permission of an app.
func (s *PermissionService) Get(ctx context.Context, appID, id string) (*Permission, error) {
	var out Permission
	if err := s.t.Get(ctx, "/apps/"+appID+"/permissions/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete detaches a permission from an app. Grants already created from it
// are unaffected.
func (s *PermissionService) Delete(ctx context.Context, appID, id string) error {
	return s.t.Delete(ctx, "/apps/"+appID+"/permissions/"+id)
}

// List pages through an app's permissions.
func (s *PermissionService) List(ctx context.Context, appID string, params ListParams) (*Page[Permission], error) {
	var out Page[Permission]
	if err := s.t.Get(ctx, "/apps/"+appID+"/permissions", params.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
