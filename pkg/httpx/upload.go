package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
)

// Upload streams a multipart payload to the storage origin: a "metadata"
// part carrying JSON followed by a "data" part carrying the raw bytes. The
// body is produced through a pipe so arbitrarily large payloads never
// buffer in memory, and no timeout applies; cancel via ctx.
func (c *Client) Upload(
	ctx context.Context,
	endpoint string,
	metadata any,
	data io.Reader,
	out any,
	opts ...RequestOption,
) error {
	o := callOptions{allowed: []int{http.StatusOK, http.StatusCreated}}
	for _, opt := range opts {
		opt(&o)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeMultipartBody(mw, metadata, data))
	}()

	// The writer goroutine blocks on the pipe until someone drains or closes
	// the read end. If the request never reaches the engine (token failure,
	// hook error, rate-limit cancellation) nothing else closes it, so close
	// here to unblock the writer. After a completed send this is a no-op.
	defer pr.Close()

	u := c.storageURL.JoinPath(endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), pr)
	if err != nil {
		return fmt.Errorf("httpx: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.execute(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

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

func writeMultipartBody(mw *multipart.Writer, metadata any, data io.Reader) error {
	if metadata != nil {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="metadata"`)
		hdr.Set("Content-Type", "application/json")
		part, err := mw.CreatePart(hdr)
		if err != nil {
			return err
		}
		if err := json.NewEncoder(part).Encode(metadata); err != nil {
			return err
		}
	}

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="data"`)
	hdr.Set("Content-Type", "application/octet-stream")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, data); err != nil {
		return err
	}

	return mw.Close()
}
