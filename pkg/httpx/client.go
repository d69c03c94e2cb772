package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/oasislabs/parcel-go/pkg/idx"
	"github.com/oasislabs/parcel-go/pkg/slogx"
	"github.com/oasislabs/parcel-go/pkg/tokenx"
)

// DefaultTimeout bounds ordinary JSON calls. Uploads and downloads run
// without a timeout and rely on context cancellation / Abort instead.
const DefaultTimeout = 30 * time.Second

// Doer executes HTTP requests. It is satisfied by *http.Client and injected
// at construction so tests and alternative engines can stand in without any
// global state.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config configures the transport client.
type Config struct {
	// APIURL is the base URL of the platform API. Required.
	APIURL string

	// StorageURL is the base URL for uploads. Defaults to APIURL.
	StorageURL string

	// Tokens supplies the bearer token for every request. Required.
	Tokens tokenx.TokenProvider

	// Engine executes requests. Defaults to a plain *http.Client.
	Engine Doer

	// Logger receives per-request debug logs. Defaults to a discard logger.
	Logger *slog.Logger

	// Timeout bounds ordinary calls. Defaults to DefaultTimeout.
	Timeout time.Duration

	// RateLimit throttles outgoing requests client-side when positive.
	RateLimit rate.Limit

	// RateBurst is the burst size for RateLimit. Defaults to 1.
	RateBurst int
}

// Client is the authenticated transport under the SDK. It injects bearer
// tokens, runs the hook pipeline, classifies errors and enforces
// expected-status contracts. Immutable after construction apart from hook
// registration during setup.
type Client struct {
	apiURL     *url.URL
	storageURL *url.URL
	tokens     tokenx.TokenProvider
	engine     Doer
	before     []BeforeRequestHook
	after      []AfterResponseHook
	limiter    *rate.Limiter
	logger     *slog.Logger
	timeout    time.Duration
}

// New creates a transport client. Configuration problems are synchronous
// construction errors.
func New(cfg Config) (*Client, error) {
	if cfg.Tokens == nil {
		return nil, errors.New("httpx: token provider is required")
	}

	apiURL, err := parseBaseURL(cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("httpx: api url: %w", err)
	}

	storageURL := apiURL
	if cfg.StorageURL != "" {
		storageURL, err = parseBaseURL(cfg.StorageURL)
		if err != nil {
			return nil, fmt.Errorf("httpx: storage url: %w", err)
		}
	}

	engine := cfg.Engine
	if engine == nil {
		engine = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slogx.Discard()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(cfg.RateLimit, burst)
	}

	return &Client{
		apiURL:     apiURL,
		storageURL: storageURL,
		tokens:     cfg.Tokens,
		engine:     engine,
		limiter:    limiter,
		logger:     logger,
		timeout:    timeout,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("not an absolute http(s) url: %q", raw)
	}
	return u, nil
}

// execute runs a request through the full pipeline: rate limit, request ID,
// user before-hooks, bearer injection, engine, the one-shot auth retry for
// credential-dropping redirects, then after-hooks.
func (c *Client) execute(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("httpx: rate limit wait: %w", err)
		}
	}

	reqID := idx.New().String()
	req.Header.Set("X-Request-ID", reqID)
	start := time.Now()

	// Hooks and downstream calls share a request-scoped logger carrying the
	// request ID.
	ctx = slogx.WithContext(ctx, c.logger)
	ctx = slogx.WithRequestID(ctx, reqID)
	logger := slogx.FromContext(ctx)

	for _, h := range c.before {
		if err := h(ctx, req); err != nil {
			return nil, err
		}
	}

	// Bearer injection runs last so no earlier hook ever observes or leaks
	// credentials it did not attach.
	if err := c.injectAuth(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.engine.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpx: failed to send request: %w", err)
	}

	resp, err = c.retryAuthRedirect(ctx, req, resp)
	if err != nil {
		return nil, err
	}

	for _, h := range c.after {
		replacement, err := h(ctx, req, resp)
		if err != nil {
			drain(resp)
			return nil, err
		}
		if replacement != nil {
			resp = replacement
		}
	}

	logger.Debug("parcel_request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return resp, nil
}

func (c *Client) injectAuth(ctx context.Context, req *http.Request) error {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// retryAuthRedirect re-sends a request once when a followed redirect landed
// on 401/403: HTTP clients (and browsers) drop the Authorization header
// across redirects, so the final hop arrived unauthenticated. Credentials
// are only ever re-sent when the final URL still matches the configured API
// or storage origin exactly.
func (c *Client) retryAuthRedirect(ctx context.Context, req *http.Request, resp *http.Response) (*http.Response, error) {
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}

	final := resp.Request
	if final == nil || final.URL.String() == req.URL.String() {
		// Not redirected; a plain 401/403 is the caller's problem.
		return resp, nil
	}

	if !c.withinOrigin(final.URL) {
		return resp, nil
	}

	retry := req.Clone(ctx)
	retry.URL = final.URL
	retry.Host = ""
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	} else if req.Body != nil {
		// Streaming body, cannot replay.
		return resp, nil
	}

	drain(resp)

	if err := c.injectAuth(ctx, retry); err != nil {
		return nil, err
	}

	retried, err := c.engine.Do(retry)
	if err != nil {
		return nil, fmt.Errorf("httpx: redirect retry failed: %w", err)
	}
	return retried, nil
}

// withinOrigin reports whether u shares scheme and host with the configured
// API or storage origin. Exact match only; never suffix-matched, so bearer
// tokens cannot leak to lookalike hosts.
func (c *Client) withinOrigin(u *url.URL) bool {
	for _, origin := range []*url.URL{c.apiURL, c.storageURL} {
		if u.Scheme == origin.Scheme && u.Host == origin.Host {
			return true
		}
	}
	return false
}

// drain discards and closes a response body so the connection can be
// reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}
