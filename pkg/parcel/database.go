package parcel

import (
	"context"
	"time"

	"github.com/oasislabs/parcel-go/pkg/httpx"
)

// Database is a structured store governed like documents: rows are reachable
// only through queries the caller's grants allow.
type Database struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// DatabaseCreateParams describes a new database.
type DatabaseCreateParams struct {
	Name string `json:"name"`
}

// DatabaseUpdateParams replaces the mutable fields of a database.
type DatabaseUpdateParams struct {
	Name string `json:"name"`
}

// DatabaseQuery is a parameterized SQL statement. Params bind to named
// placeholders ($name) in the statement.
type DatabaseQuery struct {
	SQL    string         `json:"sql"`
	Params map[string]any `json:"params,omitempty"`
}

// DatabaseService manages databases and runs queries against them.
type DatabaseService struct {
	t *httpx.Client
}

// Create provisions a new empty database owned by the caller.
func (s *DatabaseService) Create(ctx context.Context, params DatabaseCreateParams) (*Database, error) {
	var out Database
	if err := s.t.Create(ctx, "/databases", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a database by ID.
func (s *DatabaseService) Get(ctx context.Context, id string) (*Database, error) {
	var out Database
	if err := s.t.Get(ctx, "/databases/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Query runs a statement against a database and returns the result rows.
// Statements without a result set return an empty slice.
func (s *DatabaseService) Query(ctx context.Context, id string, q DatabaseQuery) ([]map[string]any, error) {
	var rows []map[string]any
	if err := s.t.Post(ctx, "/databases/"+id, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Update replaces the mutable fields of a database.
func (s *DatabaseService) Update(ctx context.Context, id string, params DatabaseUpdateParams) (*Database, error) {
	var out Database
	if err := s.t.Update(ctx, "/databases/"+id, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a database and its contents.
func (s *DatabaseService) Delete(ctx context.Context, id string) error {
	return s.t.Delete(ctx, "/databases/"+id)
}

// List pages through the databases visible to the caller.
func (s *DatabaseService) List(ctx context.Context, params ListParams) (*Page[Database], error) {
	var out Page[Database]
	if err := s.t.Get(ctx, "/databases", params.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
