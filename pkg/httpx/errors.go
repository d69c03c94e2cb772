package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
)

type requestContextKey struct{}

// WithRequestContext labels the operation a request belongs to (for example
// "document download"). Errors raised for the request carry the label as an
// "error in <context>: ..." prefix so callers can log them without
// re-deriving what failed.
func WithRequestContext(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, requestContextKey{}, operation)
}

func requestContext(ctx context.Context) string {
	op, _ := ctx.Value(requestContextKey{}).(string)
	return op
}

// APIError represents a non-2xx response from the platform API.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Code is the machine-readable error code from the response body, if any
	Code string

	// Message is the human-readable error message
	Message string

	// Endpoint is the request path that produced the error
	Endpoint string

	// Context is the operation label attached via WithRequestContext
	Context string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if e.Context != "" {
		return fmt.Sprintf("error in %s: %s", e.Context, msg)
	}
	return msg
}

// UnexpectedStatusError reports a response that was nominally successful
// (2xx) but outside the expected set for the verb.
type UnexpectedStatusError struct {
	Endpoint string
	Status   int
	Expected []int
}

// Error implements the error interface.
func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf(
		"httpx: %s returned unexpected status %d, expected one of %v",
		e.Endpoint, e.Status, e.Expected,
	)
}

// errorBody is the platform's error response shape. Older endpoints return a
// bare {error}; the token endpoint adds {error_description}; some return
// {message} only.
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
}

// classifyError turns a non-2xx response into a typed APIError. The body has
// already been read by the caller; this never touches resp.Body.
func classifyError(ctx context.Context, endpoint string, resp *http.Response, body []byte) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Endpoint:   endpoint,
		Context:    requestContext(ctx),
	}

	if isJSON(resp.Header.Get("Content-Type")) {
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err == nil {
			switch {
			case eb.Error != "":
				apiErr.Code = eb.Error
				apiErr.Message = eb.ErrorDescription
			case eb.Message != "":
				apiErr.Message = eb.Message
			}
		}
	}

	return apiErr
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
