// Package postgrest inserts rows through the REST interface of a hosted
// Supabase project (PostgREST under /rest/v1).
package postgrest

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

	"github.com/keketsolithane/keketso/internal/store"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to one project with one access key. It is safe for
// concurrent use and is meant to be built once per process.
type Client struct {
	base *url.URL
	key  string
	http *http.Client
}

var _ store.Store = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New builds a client for the project at rawURL. Both rawURL and key are
// required.
func New(rawURL, key string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, store.ErrMissingURL
	}
	if strings.TrimSpace(key) == "" {
		return nil, store.ErrMissingKey
	}
	u, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("postgrest: parse url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("postgrest: url %q must be an absolute http(s) url", rawURL)
	}
	c := &Client{base: u, key: key, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) endpoint(table string) string {
	return c.base.JoinPath("rest", "v1", table).String()
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Insert posts row to table. A non-2xx answer becomes a *store.Error; a
// failed round trip is returned wrapped.
func (c *Client) Insert(ctx context.Context, table string, row store.Row) error {
	body, err := json.Marshal([]store.Row{row})
	if err != nil {
		return fmt.Errorf("postgrest: marshal %s row: %w", table, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint(table), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("postgrest: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("postgrest: insert %s: %w", table, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeError(resp)
}

// Ping fetches the REST root, which answers 200 for a valid key.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.base.JoinPath("rest", "v1").String()+"/", nil)
	if err != nil {
		return fmt.Errorf("postgrest: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("postgrest: ping: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeError(resp)
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// decodeError reads a PostgREST or gateway error body. PostgREST answers
// {code, message, details, hint}; the gateway in front of it uses
// {message} or {error, error_description} or {msg}.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Code             any    `json:"code"`
		Message          string `json:"message"`
		Details          any    `json:"details"`
		Hint             any    `json:"hint"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
	}
	_ = json.Unmarshal(data, &body)

	e := &store.Error{
		Status:  resp.StatusCode,
		Code:    text(body.Code),
		Message: body.Message,
		Details: text(body.Details),
		Hint:    text(body.Hint),
	}
	for _, alt := range []string{body.ErrorDescription, body.Msg, body.Error, strings.TrimSpace(string(data))} {
		if e.Message != "" {
			break
		}
		e.Message = alt
	}
	if e.Message == "" || strings.HasPrefix(e.Message, "<") {
		e.Message = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return e
}

// text flattens a JSON scalar or object into display text.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
