// Package backend is the HTTPS client for the hosted database-plus-auth
// backend. All persistence, auth and row-level security live there; this
// service only issues REST calls against its table endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const restPath = "/rest/v1/"

// Client talks to the backend's REST surface. One instance is constructed
// at startup and passed by reference to every component that needs it.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a backend client. httpClient may be nil, in which case a
// client with a 15 second timeout is used.
func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// QueryError is a failed backend read or write. Message carries the
// backend-provided error text so it can be surfaced to the caller verbatim.
type QueryError struct {
	Status  int
	Message string
}

func (e *QueryError) Error() string {
	return e.Message
}

// IsNotFound reports whether the backend answered 404, which for inserts
// means the target table is not provisioned.
func (e *QueryError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// errorBody is the backend's JSON error envelope.
type errorBody struct {
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
	Code    string `json:"code"`
}

// Select fetches rows from table using the given filter/order parameters
// and decodes the JSON array response into dst.
// The driver's session token is forwarded as the bearer credential so the
// backend's row-level security still applies; an empty token falls back to
// the service key.
func (c *Client) Select(ctx context.Context, token, table string, params url.Values, dst interface{}) error {
	return c.do(ctx, token, http.MethodGet, table, params, nil, dst)
}

// Patch applies a partial update to the rows matched by params.
func (c *Client) Patch(ctx context.Context, token, table string, params url.Values, body interface{}) error {
	return c.do(ctx, token, http.MethodPatch, table, params, body, nil)
}

// Insert adds a single row to table.
func (c *Client) Insert(ctx context.Context, token, table string, body interface{}) error {
	return c.do(ctx, token, http.MethodPost, table, nil, body, nil)
}

func (c *Client) do(ctx context.Context, token, method, table string, params url.Values, body, dst interface{}) error {
	endpoint := c.baseURL + restPath + table
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", table, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}

	req.Header.Set("apikey", c.apiKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &QueryError{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return c.queryError(resp)
	}

	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return &QueryError{Status: resp.StatusCode, Message: "malformed backend response: " + err.Error()}
		}
	}

	return nil
}

// queryError extracts the backend's error message from a failed response.
func (c *Client) queryError(resp *http.Response) *QueryError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return &QueryError{Status: resp.StatusCode, Message: body.Message}
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = resp.Status
	}
	return &QueryError{Status: resp.StatusCode, Message: msg}
}
