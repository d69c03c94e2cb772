package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
)

type callOptions struct {
	allowed []int
}

// RequestOption tweaks a single request.
type RequestOption func(*callOptions)

// AllowStatusCodes widens the set of 2xx statuses accepted for this request
// beyond the verb's default.
func AllowStatusCodes(codes ...int) RequestOption {
	return func(o *callOptions) {
		o.allowed = append(o.allowed, codes...)
	}
}

// Get performs a GET request. Query keys are kebab-cased (see Query).
func (c *Client) Get(ctx context.Context, endpoint string, params Query, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodGet, endpoint, params, nil, out, []int{http.StatusOK}, opts)
}

// Post performs a POST request expecting 200.
func (c *Client) Post(ctx context.Context, endpoint string, in, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPost, endpoint, nil, in, out, []int{http.StatusOK}, opts)
}

// Create performs a POST request expecting 201.
func (c *Client) Create(ctx context.Context, endpoint string, in, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPost, endpoint, nil, in, out, []int{http.StatusCreated}, opts)
}

// Update performs a PUT request expecting 200.
func (c *Client) Update(ctx context.Context, endpoint string, in, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPut, endpoint, nil, in, out, []int{http.StatusOK}, opts)
}

// Patch performs a PATCH request expecting 200.
func (c *Client) Patch(ctx context.Context, endpoint string, in, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPatch, endpoint, nil, in, out, []int{http.StatusOK}, opts)
}

// Delete performs a DELETE request expecting 204.
func (c *Client) Delete(ctx context.Context, endpoint string, opts ...RequestOption) error {
	return c.call(ctx, http.MethodDelete, endpoint, nil, nil, nil, []int{http.StatusNoContent}, opts)
}

// Search performs a filtered listing: a POST against the resource's search
// endpoint expecting 200.
func (c *Client) Search(ctx context.Context, endpoint string, filter, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPost, endpoint+"/search", nil, filter, out, []int{http.StatusOK}, opts)
}

// call performs a JSON request/response cycle: marshal in, run the pipeline,
// read the body exactly once, classify failures, enforce the expected-status
// set, decode into out.
func (c *Client) call(
	ctx context.Context,
	method, endpoint string,
	params Query,
	in, out any,
	expected []int,
	opts []RequestOption,
) error {
	o := callOptions{allowed: expected}
	for _, opt := range opts {
		opt(&o)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.apiURL.JoinPath(endpoint)
	if q := encodeQuery(params); q != nil {
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("httpx: failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("httpx: failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.execute(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Single read feeds both error parsing and success decoding; the body
	// is never consumed twice.
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpx: failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyError(ctx, endpoint, resp, bodyBytes)
	}

	if !slices.Contains(o.allowed, resp.StatusCode) {
		return &UnexpectedStatusError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Expected: o.allowed,
		}
	}

	if out != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("httpx: failed to decode response: %w", err)
		}
	}

	return nil
}
