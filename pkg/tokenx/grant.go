package tokenx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ClientAssertionType is the assertion type for private-key-JWT client
// authentication at the token endpoint.
const ClientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

const grantTimeout = 10 * time.Second

// tokenResponse is the token endpoint response per RFC 6749.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
}

// postGrant sends a form-encoded grant request to the token endpoint and
// returns the parsed response together with the instant captured before the
// request was sent. Expiry is anchored at that instant rather than response
// time so a slow network never overestimates token validity.
func postGrant(
	ctx context.Context,
	client *http.Client,
	endpoint string,
	form url.Values,
) (*tokenResponse, time.Time, error) {
	requestedAt := time.Now()

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		endpoint,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("tokenx: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("tokenx: failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("tokenx: failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, time.Time{}, parseTokenError(resp.StatusCode, body)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, time.Time{}, fmt.Errorf("tokenx: failed to decode response: %w", err)
	}

	return &tr, requestedAt, nil
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: grantTimeout}
}
