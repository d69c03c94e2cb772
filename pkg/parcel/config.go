package parcel

import (
	"errors"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/time/rate"

	"github.com/oasislabs/parcel-go/pkg/httpx"
	"github.com/oasislabs/parcel-go/pkg/tokenx"
)

// DefaultAPIURL is the production API origin.
const DefaultAPIURL = "https://api.oasislabs.com/parcel/v1"

// Config configures a Client. The zero value plus a TokenSource targets
// production.
type Config struct {
	// APIURL is the base URL of the Parcel API. Defaults to DefaultAPIURL.
	APIURL string

	// StorageURL is the base URL for document uploads. Defaults to APIURL.
	StorageURL string

	// TokenSource selects how the SDK acquires access tokens. Required
	// unless TokenProvider is set.
	TokenSource tokenx.TokenSource

	// TokenProvider overrides TokenSource with a pre-built provider.
	TokenProvider tokenx.TokenProvider

	// HTTPClient executes requests. Defaults to a plain *http.Client.
	HTTPClient httpx.Doer

	// Logger receives per-request debug logs. Off by default.
	Logger *slog.Logger

	// Timeout bounds ordinary API calls; uploads and downloads are exempt.
	// Defaults to httpx.DefaultTimeout.
	Timeout time.Duration

	// RateLimit throttles outgoing requests client-side when positive.
	RateLimit rate.Limit

	// RateBurst is the burst size for RateLimit.
	RateBurst int
}

func (c Config) withDefaults() Config {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.StorageURL == "" {
		c.StorageURL = c.APIURL
	}
	return c
}

// Validate implements validation.Validatable.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.APIURL, validation.Required, is.URL),
		validation.Field(&c.StorageURL, is.URL),
		validation.Field(&c.RateBurst, validation.Min(0)),
	); err != nil {
		return err
	}

	if c.TokenSource == nil && c.TokenProvider == nil {
		return errors.New("parcel: either TokenSource or TokenProvider is required")
	}

	return nil
}
