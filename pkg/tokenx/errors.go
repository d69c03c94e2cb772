package tokenx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	// OAuth2 error codes per RFC 6749 the token endpoint is known to return.
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeInvalidClient        = "invalid_client"
	ErrorCodeInvalidGrant         = "invalid_grant"
	ErrorCodeInvalidScope         = "invalid_scope"
	ErrorCodeUnsupportedGrantType = "unsupported_grant_type"
	ErrorCodeServerError          = "server_error"
)

// ErrUnsupportedSource reports a TokenSource variant NewProvider does not
// recognize. This is a configuration error, surfaced synchronously.
var ErrUnsupportedSource = errors.New("tokenx: unsupported token source")

// TokenError represents an error response from the token endpoint, carrying
// the OAuth2 error code and description alongside the HTTP status.
type TokenError struct {
	// StatusCode is the HTTP status code of the token endpoint response
	StatusCode int `json:"-"`

	// Code is the OAuth2 error code (e.g. "invalid_grant")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *TokenError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// parseTokenError turns a non-2xx token endpoint response body into a typed
// TokenError, falling back to the HTTP status text when the body is not the
// standard OAuth2 error shape.
func parseTokenError(statusCode int, body []byte) error {
	var e TokenError
	if err := json.Unmarshal(body, &e); err == nil && e.Code != "" {
		e.StatusCode = statusCode
		return &e
	}

	return &TokenError{
		StatusCode:  statusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", statusCode, http.StatusText(statusCode)),
	}
}
