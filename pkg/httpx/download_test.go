package httpx

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oasislabs/parcel-go/pkg/tokenx"
)

func TestDownloadRoundTrip(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 12<<20)
	_, err := rand.Read(payload)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/documents/doc-1/download", r.URL.Path)
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	c, err := New(Config{
		APIURL: srv.URL,
		Tokens: tokenx.NewStaticProvider("tok"),
	})
	require.NoError(t, err)

	t.Run("via Read", func(t *testing.T) {
		dl := c.Download(context.Background(), "/documents/doc-1/download")
		defer dl.Close()

		got, err := io.ReadAll(dl)
		require.NoError(t, err)
		require.True(t, bytes.Equal(payload, got))
	})

	t.Run("via WriteTo", func(t *testing.T) {
		dl := c.Download(context.Background(), "/documents/doc-1/download")
		defer dl.Close()

		var buf bytes.Buffer
		n, err := dl.WriteTo(&buf)
		require.NoError(t, err)
		require.Equal(t, int64(len(payload)), n)
		require.True(t, bytes.Equal(payload, buf.Bytes()))
	})
}

func TestDownloadLazyStart(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte("content"))
	}))
	defer srv.Close()

	c, err := New(Config{
		APIURL: srv.URL,
		Tokens: tokenx.NewStaticProvider("tok"),
	})
	require.NoError(t, err)

	dl := c.Download(context.Background(), "/documents/doc-1/download")
	defer dl.Close()

	// Creating the handle does not touch the network.
	require.Equal(t, int32(0), requests.Load())

	buf := make([]byte, 4)
	_, err = dl.Read(buf)
	require.NoError(t, err)
	require.Equal(t, int32(1), requests.Load())
}

func TestDownloadAbort(t *testing.T) {
	t.Parallel()

	t.Run("mid-stream", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flusher, ok := w.(http.Flusher)
			require.True(t, ok)

			_, _ = w.Write(bytes.Repeat([]byte("x"), 1024))
			flusher.Flush()

			// Hold the rest of the body until the client aborts.
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		c, err := New(Config{
			APIURL: srv.URL,
			Tokens: tokenx.NewStaticProvider("tok"),
		})
		require.NoError(t, err)

		dl := c.Download(context.Background(), "/documents/doc-1/download")
		defer dl.Close()

		buf := make([]byte, 1024)
		_, err = io.ReadFull(dl, buf)
		require.NoError(t, err)

		go func() {
			time.Sleep(20 * time.Millisecond)
			dl.Abort()
		}()

		_, err = io.ReadAll(dl)
		require.ErrorIs(t, err, ErrAborted)
		require.True(t, dl.Aborted())
	})

	t.Run("before start", func(t *testing.T) {
		t.Parallel()

		var served atomic.Bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			served.Store(true)
		}))
		defer srv.Close()

		c, err := New(Config{
			APIURL: srv.URL,
			Tokens: tokenx.NewStaticProvider("tok"),
		})
		require.NoError(t, err)

		dl := c.Download(context.Background(), "/documents/doc-1/download")
		dl.Abort()

		_, err = dl.Read(make([]byte, 1))
		require.ErrorIs(t, err, ErrAborted)
		require.False(t, served.Load())
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		c, err := New(Config{
			APIURL: "https://api.example.com",
			Tokens: tokenx.NewStaticProvider("tok"),
		})
		require.NoError(t, err)

		dl := c.Download(context.Background(), "/documents/doc-1/download")
		dl.Abort()
		dl.Abort()
		require.True(t, dl.Aborted())
	})
}

func TestDownloadErrorClassified(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","error_description":"no such document"}`))
	}))
	defer srv.Close()

	c, err := New(Config{
		APIURL: srv.URL,
		Tokens: tokenx.NewStaticProvider("tok"),
	})
	require.NoError(t, err)

	ctx := WithRequestContext(context.Background(), "document download")
	dl := c.Download(ctx, "/documents/missing/download")
	defer dl.Close()

	_, err = io.ReadAll(dl)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, "not_found", apiErr.Code)
	require.Equal(t, "error in document download: not_found: no such document", err.Error())
}

func TestDownloadContextCancelPassesThrough(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte("partial"))
		flusher.Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(Config{
		APIURL: srv.URL,
		Tokens: tokenx.NewStaticProvider("tok"),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	dl := c.Download(ctx, "/documents/doc-1/download")
	defer dl.Close()

	buf := make([]byte, 7)
	_, err = io.ReadFull(dl, buf)
	require.NoError(t, err)

	cancel()

	_, err = io.ReadAll(dl)
	require.Error(t, err)
	// Cancelling the parent is not an abort; the distinction matters to
	// callers deciding whether to retry.
	require.NotErrorIs(t, err, ErrAborted)
	require.False(t, dl.Aborted())
}
