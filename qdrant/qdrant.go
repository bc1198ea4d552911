// Package qdrant provides a typed HTTP client for the external vector
// store. Every boundary payload is an explicit record validated by the
// JSON decoder; internal logic never operates on untyped maps.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/webdex/webdex"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 30 * time.Second

// Ensure Client implements webdex.VectorStore at compile time.
var _ webdex.VectorStore = (*Client)(nil)

// Client talks to a vector store over its REST API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the api-key header sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a client for the store at baseURL
// (e.g. "http://localhost:6333").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// createCollectionRequest is the PUT /collections/{name} body.
type createCollectionRequest struct {
	Vectors vectorParams `json:"vectors"`
}

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

// upsertPointsRequest is the PUT /collections/{name}/points body.
type upsertPointsRequest struct {
	Points []webdex.IndexPoint `json:"points"`
}

// searchRequest is the POST /collections/{name}/points/search body.
type searchRequest struct {
	Vector         []float32 `json:"vector"`
	Limit          int       `json:"limit"`
	ScoreThreshold *float32  `json:"score_threshold,omitempty"`
	WithPayload    bool      `json:"with_payload"`
}

// searchResponse is the search result envelope.
type searchResponse struct {
	Result []searchHit `json:"result"`
}

type searchHit struct {
	ID      string              `json:"id"`
	Score   float32             `json:"score"`
	Payload webdex.PointPayload `json:"payload"`
}

// EnsureCollection checks for the collection and creates it only on a
// not-found response. Any other unexpected status is an error, so a second
// call with an existing collection performs zero creation requests.
func (c *Client) EnsureCollection(ctx context.Context, name string, size int, distance string) error {
	status, _, err := c.do(ctx, http.MethodGet, "/collections/"+name, nil)
	if err != nil {
		return err
	}
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		// Fall through to creation.
	default:
		return webdex.Errorf(webdex.EINTERNAL, "collection check for %q returned HTTP %d", name, status)
	}

	body := createCollectionRequest{Vectors: vectorParams{Size: size, Distance: distance}}
	status, _, err = c.do(ctx, http.MethodPut, "/collections/"+name, body)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return webdex.Errorf(webdex.EINTERNAL, "collection create for %q returned HTTP %d", name, status)
	}
	return nil
}

// UpsertPoints writes one batch of points in a single call.
func (c *Client) UpsertPoints(ctx context.Context, name string, points []webdex.IndexPoint) error {
	if len(points) == 0 {
		return nil
	}
	status, _, err := c.do(ctx, http.MethodPut, "/collections/"+name+"/points", upsertPointsRequest{Points: points})
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return webdex.Errorf(webdex.EINTERNAL, "point upsert to %q returned HTTP %d", name, status)
	}
	return nil
}

// Search returns up to limit nearest neighbors of vector. A zero threshold
// disables score filtering.
func (c *Client) Search(ctx context.Context, name string, vector []float32, limit int, threshold float32) ([]webdex.VectorMatch, error) {
	req := searchRequest{Vector: vector, Limit: limit, WithPayload: true}
	if threshold > 0 {
		req.ScoreThreshold = &threshold
	}

	status, body, err := c.do(ctx, http.MethodPost, "/collections/"+name+"/points/search", req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, webdex.Errorf(webdex.EINTERNAL, "search in %q returned HTTP %d", name, status)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, webdex.Errorf(webdex.EINTERNAL, "invalid search response: %v", err)
	}

	matches := make([]webdex.VectorMatch, 0, len(resp.Result))
	for _, hit := range resp.Result {
		matches = append(matches, webdex.VectorMatch{
			ID:      hit.ID,
			Score:   hit.Score,
			Payload: hit.Payload,
		})
	}
	return matches, nil
}

// do sends one request with an optional JSON body and returns the status
// and response body. Transport failures map to EUNAVAILABLE.
func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, webdex.Errorf(webdex.EINTERNAL, "encoding %s %s: %v", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, webdex.Errorf(webdex.EINVALID, "building %s %s: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, webdex.Errorf(webdex.EUNAVAILABLE, "vector store unreachable: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, webdex.Errorf(webdex.EUNAVAILABLE, "reading response for %s %s: %v", method, path, err)
	}
	return resp.StatusCode, body, nil
}

// String describes the client for logs.
func (c *Client) String() string {
	return fmt.Sprintf("qdrant(%s)", c.baseURL)
}
