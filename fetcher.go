package webdex

import (
	"context"
	"net/http"
)

// FetchRequest describes one outbound HTTP request.
type FetchRequest struct {
	URL    string
	Header http.Header
}

// FetchResponse is the typed result of a fetch. Body is fully read and the
// underlying connection released before the response is returned.
type FetchResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the response has a 2xx status.
func (r *FetchResponse) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Fetcher issues a single logical HTTP request, retrying transient failures
// with backoff. After retries are exhausted the last response (possibly
// non-2xx) is returned with a nil error so the caller decides fatality;
// connection-level failure after retries returns a nil response and an
// error.
type Fetcher interface {
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResponse, error)
}
