package httpx

import (
	"context"
	"net/http"
)

// BeforeRequestHook observes or mutates an outgoing request. Hooks run in
// registration order; bearer injection always runs last so earlier hooks see
// the request before credentials are attached.
type BeforeRequestHook func(ctx context.Context, req *http.Request) error

// AfterResponseHook observes a response. Hooks run in registration order and
// all receive the *same* response object: the client never clones responses,
// because cloning would force buffering of streaming bodies. A hook that
// returns a non-nil response replaces it for subsequent hooks and for the
// caller. Consequences of sharing: a hook that mutates response state
// affects every later hook, and the body can be consumed at most once across
// all hooks and the caller combined.
type AfterResponseHook func(ctx context.Context, req *http.Request, resp *http.Response) (*http.Response, error)

// OnBeforeRequest registers a hook to run before every request.
// Not safe to call concurrently with requests; register during setup.
func (c *Client) OnBeforeRequest(h BeforeRequestHook) {
	c.before = append(c.before, h)
}

// OnAfterResponse registers a hook to run after every response.
// Not safe to call concurrently with requests; register during setup.
func (c *Client) OnAfterResponse(h AfterResponseHook) {
	c.after = append(c.after, h)
}
