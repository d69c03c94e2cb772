package parcel

import (
	"context"
	"time"

	"github.com/oasislabs/parcel-go/pkg/httpx"
)

// App is a registered application: the unit that requests permissions from
// users and runs jobs against their data.
type App struct {
	ID               string    `json:"id"`
	Owner            string    `json:"owner"`
	Admins           []string  `json:"admins"`
	Collaborators    []string  `json:"collaborators"`
	Name             string    `json:"name"`
	Organization     string    `json:"organization"`
	ShortDescription string    `json:"shortDescription"`
	Published        bool      `json:"published"`
	CreatedAt        time.Time `json:"createdAt"`
}

// AppCreateParams describes a new app registration.
type AppCreateParams struct {
	Admins           []string `json:"admins,omitempty"`
	Collaborators    []string `json:"collaborators,omitempty"`
	Name             string   `json:"name"`
	Organization     string   `json:"organization"`
	ShortDescription string   `json:"shortDescription"`
}

// AppUpdateParams replaces the mutable fields of an app.
type AppUpdateParams struct {
	Admins           []string `json:"admins,omitempty"`
	Collaborators    []string `json:"collaborators,omitempty"`
	Name             string   `json:"name,omitempty"`
	Organization     string   `json:"organization,omitempty"`
	ShortDescription string   `json:"shortDescription,omitempty"`
	Published        *bool    `json:"published,omitempty"`
}

// AppService manages app registrations.
type AppService struct {
	t *httpx.Client
}

// Create registers a new app owned by the caller.
func (s *AppService) Create(ctx context.Context, params AppCreateParams) (*App, error) {
	var out App
	if err := s.t.Create(ctx, "/apps", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a single app by ID.
func (s *AppService) Get(ctx context.Context, id string) (*App, error) {
	var out App
	if err := s.t.Get(ctx, "/apps/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the mutable fields of an app.
func (s *AppService) Update(ctx context.Context, id string, params AppUpdateParams) (*App, error) {
	var out App
	if err := s.t.Update(ctx, "/apps/"+id, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an app registration.
func (s *AppService) Delete(ctx context.Context, id string) error {
	return s.t.Delete(ctx, "/apps/"+id)
}

// List pages through the apps visible to the caller.
func (s *AppService) List(ctx context.Context, params ListParams) (*Page[App], error) {
	var out Page[App]
	if err := s.t.Get(ctx, "/apps", params.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
