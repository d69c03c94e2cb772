package parcel

import (
	"context"
	"io"
	"time"

	"github.com/oasislabs/parcel-go/pkg/httpx"
)

// Document is stored data under the platform's access control. The document
// body lives at the storage origin; this type is its metadata.
type Document struct {
	ID             string          `json:"id"`
	Creator        string          `json:"creator"`
	Owner          string          `json:"owner"`
	Size           int64           `json:"size"`
	Details        DocumentDetails `json:"details"`
	OriginatingJob string          `json:"originatingJob,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// DocumentDetails is caller-controlled metadata attached to a document.
type DocumentDetails struct {
	Title string   `json:"title,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// DocumentUpload is the metadata half of an upload; the body streams
// alongside it.
type DocumentUpload struct {
	Details DocumentDetails `json:"details"`
	// ToApp marks the document for an app so consent follows the app's
	// permissions rather than an explicit grant.
	ToApp string `json:"toApp,omitempty"`
}

// DocumentUpdateParams replaces the mutable fields of a document.
type DocumentUpdateParams struct {
	Owner   string          `json:"owner,omitempty"`
	Details DocumentDetails `json:"details"`
}

// DocumentSearchParams filters a document search. Fields combine with AND.
type DocumentSearchParams struct {
	SelectedByCondition map[string]any `json:"selectedByCondition,omitempty"`
	AccessibleInContext *AccessContext `json:"accessibleInContext,omitempty"`
}

// AccessContext scopes a search to what a given identity can reach.
type AccessContext struct {
	AccessorID string `json:"accessorId"`
}

// DocumentService manages documents and their data.
type DocumentService struct {
	t *httpx.Client
}

// Upload streams data into a new document. The body is read exactly once
// and never buffered whole, so arbitrarily large readers are fine.
func (s *DocumentService) Upload(ctx context.Context, meta DocumentUpload, data io.Reader) (*Document, error) {
	ctx = httpx.WithRequestContext(ctx, "document upload")

	var out Document
	if err := s.t.Upload(ctx, "/documents", meta, data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download returns a lazy streaming handle over the document's data. The
// request is sent on first read; Abort cancels it at any point.
func (s *DocumentService) Download(ctx context.Context, id string) *httpx.Download {
	ctx = httpx.WithRequestContext(ctx, "document download")
	return s.t.Download(ctx, "/documents/"+id+"/download")
}

// Get returns a document's metadata without touching its data.
func (s *DocumentService) Get(ctx context.Context, id string) (*Document, error) {
	var out Document
	if err := s.t.Get(ctx, "/documents/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces a document's mutable metadata.
func (s *DocumentService) Update(ctx context.Context, id string, params DocumentUpdateParams) (*Document, error) {
	var out Document
	if err := s.t.Update(ctx, "/documents/"+id, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a document and its data.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	return s.t.Delete(ctx, "/documents/"+id)
}

// Search pages through documents matching the filter.
func (s *DocumentService) Search(ctx context.Context, params DocumentSearchParams) (*Page[Document], error) {
	var out Page[Document]
	if err := s.t.Search(ctx, "/documents", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
