package parcel

import (
	"fmt"

	"github.com/oasislabs/parcel-go/pkg/httpx"
	"github.com/oasislabs/parcel-go/pkg/tokenx"
)

// Client is the entry point to the Parcel API. Construct with New; the zero
// value is not usable.
type Client struct {
	transport *httpx.Client

	Identities   *IdentityService
	Apps         *AppService
	Documents    *DocumentService
	Grants       *GrantService
	Permissions  *PermissionService
	Jobs         *JobService
	Databases    *DatabaseService
	Tokenization *TokenizationService
}

// New validates cfg, builds the token provider for its source and wires the
// resource services over a shared authenticated transport.
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("parcel: invalid config: %w", err)
	}

	provider := cfg.TokenProvider
	if provider == nil {
		var err error
		provider, err = tokenx.NewProvider(cfg.TokenSource)
		if err != nil {
			return nil, fmt.Errorf("parcel: token source: %w", err)
		}
	}

	transport, err := httpx.New(httpx.Config{
		APIURL:     cfg.APIURL,
		StorageURL: cfg.StorageURL,
		Tokens:     provider,
		Engine:     cfg.HTTPClient,
		Logger:     cfg.Logger,
		Timeout:    cfg.Timeout,
		RateLimit:  cfg.RateLimit,
		RateBurst:  cfg.RateBurst,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{transport: transport}
	c.Identities = &IdentityService{t: transport}
	c.Apps = &AppService{t: transport}
	c.Documents = &DocumentService{t: transport}
	c.Grants = &GrantService{t: transport}
	c.Permissions = &PermissionService{t: transport}
	c.Jobs = &JobService{t: transport}
	c.Databases = &DatabaseService{t: transport}
	c.Tokenization = &TokenizationService{t: transport}
	return c, nil
}

// Transport exposes the underlying HTTP client for hook registration and
// raw calls. Register hooks during setup, before issuing requests.
func (c *Client) Transport() *httpx.Client {
	return c.transport
}

// Page is one page of a listing. NextPageToken is empty on the last page.
type Page[T any] struct {
	Results       []T    `json:"results"`
	NextPageToken string `json:"nextPageToken"`
}

// ListParams controls pagination of listing calls.
type ListParams struct {
	PageSize  int
	PageToken string
}

func (p ListParams) query() httpx.Query {
	q := httpx.Query{}
	if p.PageSize > 0 {
		q["pageSize"] = p.PageSize
	}
	if p.PageToken != "" {
		q["pageToken"] = p.PageToken
	}
	return q
}
