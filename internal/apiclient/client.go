package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// maxErrorBody caps how much of a failed response body is kept on HTTPError.
const maxErrorBody = 2048

// Client is a JSON API client bound to one base URL.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client (and therefore its transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithDefaultHeader sets a header sent on every request.
func WithDefaultHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// NewClient constructs a Client.
// base := "http://localhost:3001/api" (no trailing slash required).
// timeout controls the HTTP client request timeout.
func NewClient(base string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", base)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// RequestOption adjusts a single outgoing request.
type RequestOption func(*http.Request)

// WithHeader sets a header on one request.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// WithQuery adds a query parameter to one request.
func WithQuery(key, value string) RequestOption {
	return func(r *http.Request) {
		q := r.URL.Query()
		q.Add(key, value)
		r.URL.RawQuery = q.Encode()
	}
}

// Get performs a GET and decodes the JSON response into T.
func Get[T any](ctx context.Context, c *Client, endpoint string, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, endpoint, nil, &out, opts...)
	return out, err
}

// Post sends body (JSON value or *MultipartBody) and decodes the JSON response into T.
func Post[T any](ctx context.Context, c *Client, endpoint string, body any, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPost, endpoint, body, &out, opts...)
	return out, err
}

// Put sends body (JSON value or *MultipartBody) and decodes the JSON response into T.
func Put[T any](ctx context.Context, c *Client, endpoint string, body any, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPut, endpoint, body, &out, opts...)
	return out, err
}

// Delete performs a DELETE and decodes the JSON response into T.
func Delete[T any](ctx context.Context, c *Client, endpoint string, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodDelete, endpoint, nil, &out, opts...)
	return out, err
}

// Do performs exactly one request. A nil out discards the response body.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, out any, opts ...RequestOption) error {
	target, err := c.resolve(endpoint)
	if err != nil {
		return err
	}

	reader, contentType, err := encodeBody(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{StatusCode: resp.StatusCode, Status: statusText(resp), Body: snippet}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, URL: target, Err: fmt.Errorf("read body: %w", err)}
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// resolve joins endpoint onto the base URL path, keeping any query in endpoint.
func (c *Client) resolve(endpoint string) (string, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if ref.IsAbs() {
		return "", fmt.Errorf("invalid endpoint %q: must be a path", endpoint)
	}

	u := *c.baseURL // copy
	joined := path.Join("/", c.baseURL.Path, ref.Path)
	if strings.HasSuffix(ref.Path, "/") && joined != "/" {
		joined += "/"
	}
	u.Path = joined
	u.RawPath = ""
	u.RawQuery = ref.RawQuery
	u.Fragment = ""
	return u.String(), nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *MultipartBody:
		if b == nil {
			return nil, "", nil
		}
		r, _, err := b.reader()
		if err != nil {
			return nil, "", err
		}
		return r, b.ContentType(), nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
