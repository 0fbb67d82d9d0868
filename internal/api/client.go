// Package api talks to the Pathweiz backend and, for milestone updates,
// directly to the Supabase REST endpoint.
package api

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

	"go.uber.org/zap"
)

// DefaultExploreLimit is the explore page size when none is configured
const DefaultExploreLimit = 10

// ErrNetwork marks a request that failed in transport or with a non-2xx status
var ErrNetwork = errors.New("request failed")

// StatusError is a non-2xx response
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s returned %d", e.Method, e.Path, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Unwrap() error { return ErrNetwork }

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// TokenSource supplies the signed-in user's access token
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Options configures a Client
type Options struct {
	BackendURL  string
	SupabaseURL string
	SupabaseKey string
	HTTPClient  *http.Client
	Tokens      TokenSource
	Logger      *zap.Logger
	// ActionItemWorkers bounds the ActionItemsFor fan-out; 0 means 4
	ActionItemWorkers int
}

// Client is the API gateway
type Client struct {
	backendURL  string
	supabaseURL string
	supabaseKey string
	httpClient  *http.Client
	tokens      TokenSource
	logger      *zap.Logger
	workers     int
}

// NewClient creates a gateway
func NewClient(opts Options) *Client {
	c := &Client{
		backendURL:  strings.TrimRight(opts.BackendURL, "/"),
		supabaseURL: strings.TrimRight(opts.SupabaseURL, "/"),
		supabaseKey: opts.SupabaseKey,
		httpClient:  opts.HTTPClient,
		tokens:      opts.Tokens,
		logger:      opts.Logger,
		workers:     opts.ActionItemWorkers,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.workers <= 0 {
		c.workers = 4
	}
	return c
}

type request struct {
	method  string
	url     string
	path    string // for errors and logs
	query   url.Values
	body    any
	auth    bool
	headers map[string]string
}

// do issues one request and decodes a 2xx JSON body into out
func (c *Client) do(ctx context.Context, r request, out any) error {
	var reader io.Reader
	if r.body != nil {
		jsonData, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	target := r.url
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return err
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if r.auth {
		if c.tokens == nil {
			return fmt.Errorf("no session provider configured")
		}
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, r.method, r.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrNetwork, r.path, err)
	}

	c.logger.Debug("API request",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: r.method, Path: r.path, Code: resp.StatusCode, Body: errorBody(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", r.path, err)
	}
	return nil
}

func (c *Client) backend(method, path string) request {
	return request{method: method, url: c.backendURL + path, path: path}
}

// errorBody picks the message out of a {"error": ...} or {"message": ...} body
func errorBody(data []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &e) == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return strings.TrimSpace(string(data))
}
