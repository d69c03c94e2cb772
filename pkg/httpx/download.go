package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
)

// ErrAborted is the terminal outcome of Download.Abort. It is distinct from
// network failures so a caller can tell "I cancelled this" apart from "it
// broke".
var ErrAborted = errors.New("httpx: download aborted")

// Download is a single-use streaming handle for a large response body. The
// request is not sent until the first read (or WriteTo), so an unconsumed
// handle costs nothing and never produces a dangling error. Consume it
// either by reading (it implements io.ReadCloser) or by piping with
// WriteTo; mixing the two on one handle is unsupported. A Download is not
// restartable: after abort, error or EOF, create a new one.
type Download struct {
	client   *Client
	endpoint string

	ctx    context.Context
	cancel context.CancelFunc

	once     sync.Once
	body     io.ReadCloser
	startErr error
	aborted  atomic.Bool
}

// Download creates a lazy streaming handle for a GET of endpoint. No I/O
// happens until the handle is consumed. No timeout applies; use Abort or
// cancel ctx.
func (c *Client) Download(ctx context.Context, endpoint string) *Download {
	dctx, cancel := context.WithCancel(ctx)
	return &Download{
		client:   c,
		endpoint: endpoint,
		ctx:      dctx,
		cancel:   cancel,
	}
}

// start sends the request on first consumption. Abort beforehand prevents
// the request from ever being sent.
func (d *Download) start() error {
	d.once.Do(func() {
		if d.aborted.Load() {
			d.startErr = ErrAborted
			return
		}

		u := d.client.apiURL.JoinPath(d.endpoint)
		req, err := http.NewRequestWithContext(d.ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			d.startErr = fmt.Errorf("httpx: failed to create request: %w", err)
			return
		}

		resp, err := d.client.execute(d.ctx, req)
		if err != nil {
			d.startErr = d.classify(err)
			return
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			_ = resp.Body.Close()
			d.startErr = classifyError(d.ctx, d.endpoint, resp, body)
			return
		}

		d.body = resp.Body
	})
	return d.startErr
}

// Read implements io.Reader over the response body, triggering the request
// on first call.
func (d *Download) Read(p []byte) (int, error) {
	if err := d.start(); err != nil {
		return 0, err
	}

	n, err := d.body.Read(p)
	if err != nil && err != io.EOF {
		err = d.classify(err)
	}
	return n, err
}

// WriteTo streams the whole body into w, triggering the request on first
// call. The sink may hold partial data after a failure; a failed download
// is wholly invalid and the caller should discard what was written.
func (d *Download) WriteTo(w io.Writer) (int64, error) {
	if err := d.start(); err != nil {
		return 0, err
	}

	n, err := io.Copy(w, d.body)
	if err != nil {
		return n, d.classify(err)
	}
	return n, nil
}

// Abort cancels the download. Safe before first consumption (the request is
// then never sent) and idempotent; pending and future reads fail with
// ErrAborted.
func (d *Download) Abort() {
	d.aborted.Store(true)
	d.cancel()
}

// Aborted reports whether Abort has been called.
func (d *Download) Aborted() bool {
	return d.aborted.Load()
}

// Close releases the underlying connection. It does not mark the download
// as aborted; a fully-drained body closes cleanly.
func (d *Download) Close() error {
	d.cancel()
	if d.body != nil {
		return d.body.Close()
	}
	return nil
}

// classify maps cancellation caused by Abort onto ErrAborted; every other
// failure passes through as a transport error.
func (d *Download) classify(err error) error {
	if d.aborted.Load() {
		return ErrAborted
	}
	return err
}
