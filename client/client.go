// Package client is the Go SDK for the dashboard API. It speaks the
// {success, data, message} envelope, classifies failures so callers can
// branch on them, and layers a TTL list cache on top of the read paths.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when the server reports a missing resource (404).
var ErrNotFound = errors.New("resource not found")

// ValidationError is a rejected request the caller can fix (4xx other
// than 404). Message carries the server's explanation verbatim.
type ValidationError struct {
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("validation error (%d)", e.StatusCode)
}

// NetworkOrServerError covers transport failures and 5xx responses.
// Cached data may still be served while this is returned.
type NetworkOrServerError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkOrServerError) Error() string {
	if e.Err != nil {
		return "network or server error: " + e.Err.Error()
	}
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error %d", e.StatusCode)
}

func (e *NetworkOrServerError) Unwrap() error { return e.Err }

// IsRetriable reports whether the error is transient (network / 5xx)
// rather than a caller mistake.
func IsRetriable(err error) bool {
	var nse *NetworkOrServerError
	return errors.As(err, &nse)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = time.Tick(time.Minute / time.Duration(perMinute))
		}
	}
}

// Client talks to one dashboard deployment on behalf of one session.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter <-chan time.Time
}

func New(baseURL, token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("base url is empty")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body interface{}) (json.RawMessage, error) {
	if c.limiter != nil {
		select {
		case <-ctx.Done():
			return nil, &NetworkOrServerError{Err: ctx.Err()}
		case <-c.limiter:
		}
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("token", c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkOrServerError{Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var env envelope
	// A body that is not the envelope (proxy error page, truncated
	// response) is treated as a server fault, not a validation one.
	if jsonErr := json.Unmarshal(raw, &env); jsonErr != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil, &NetworkOrServerError{StatusCode: resp.StatusCode, Err: jsonErr}
		}
		env.Message = strings.TrimSpace(string(raw))
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 500:
		return nil, &NetworkOrServerError{StatusCode: resp.StatusCode, Message: env.Message}
	case resp.StatusCode >= 400:
		return nil, &ValidationError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if !env.Success {
		return nil, &ValidationError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	return env.Data, nil
}

func getJSON[T any](ctx context.Context, c *Client, path string, params url.Values) (T, error) {
	var out T
	data, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return out, err
	}
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &NetworkOrServerError{Err: err}
	}
	return out, nil
}

func postJSON[T any](ctx context.Context, c *Client, path string, body interface{}) (T, error) {
	var out T
	data, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return out, err
	}
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &NetworkOrServerError{Err: err}
	}
	return out, nil
}

func putJSON[T any](ctx context.Context, c *Client, path string, body interface{}) (T, error) {
	var out T
	data, err := c.do(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return out, err
	}
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &NetworkOrServerError{Err: err}
	}
	return out, nil
}

func deleteJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	data, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return out, err
	}
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &NetworkOrServerError{Err: err}
	}
	return out, nil
}
