// Package api is the typed client of the platform REST API. Every operation
// issues exactly one HTTP request with the session cookies attached and
// never retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/pkg/metrics"
)

// HeaderRequestID carries a per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// ResponseMeta describes the HTTP answer independently of its body.
type ResponseMeta struct {
	Status    int
	OK        bool
	RequestID string
}

// Response is the uniform result of a gateway call. Data is the raw JSON body,
// or an empty object when the body is not JSON.
type Response struct {
	Meta ResponseMeta
	Data json.RawMessage
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Data, v)
}

var emptyObject = json.RawMessage(`{}`)

// Client talks to one platform API base URL.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger zerolog.Logger

	mu  sync.Mutex
	jar *cookiejar.Jar
}

type Option func(*Client)

// WithHTTPClient replaces the underlying transport client. Its cookie jar is
// replaced by the client's own.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		cp := *h
		c.http = &cp
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a client for an absolute http(s) base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("api base url %q: must be an absolute http(s) URL", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		base:   u,
		http:   &http.Client{},
		logger: zerolog.Nop(),
		jar:    jar,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Jar = jar
	return c, nil
}

// BaseURL is the API base without a trailing slash.
func (c *Client) BaseURL() string { return c.base.String() }

// Cookies returns the session cookies held for the API host.
func (c *Client) Cookies() []*http.Cookie {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.jar.Cookies(c.base)
}

// SetCookies restores previously saved session cookies.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jar.SetCookies(c.base, cookies)
}

// ResetCookies forgets every cookie, as after a logout.
func (c *Client) ResetCookies() {
	jar, _ := cookiejar.New(nil)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jar = jar
	c.http.Jar = jar
}

// Do sends a JSON request. body may be nil. A returned error always wraps
// domain.ErrTransport; HTTP failures come back as a Response with Meta.OK false.
func (c *Client) Do(ctx context.Context, op, method, path string, body any) (*Response, error) {
	var (
		rd          io.Reader
		contentType string
	)
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", op, err)
		}
		rd = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.send(ctx, op, method, path, rd, contentType)
}

func (c *Client) send(ctx context.Context, op, method, path string, body io.Reader, contentType string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set(HeaderRequestID, reqID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(op, "transport").Inc()
		c.logger.Warn().Err(err).Str("op", op).Str("method", method).Str("path", path).Str("request_id", reqID).Msg("api unreachable")
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(op, "transport").Inc()
		return nil, fmt.Errorf("%w: %s %s: read body: %w", domain.ErrTransport, method, path, err)
	}
	elapsed := time.Since(start)
	metrics.RequestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	metrics.ResponseStatusTotal.WithLabelValues(statusClass(resp.StatusCode)).Inc()

	data := json.RawMessage(raw)
	if len(bytes.TrimSpace(raw)) == 0 || !json.Valid(raw) {
		data = emptyObject
	}

	out := &Response{
		Meta: ResponseMeta{
			Status:    resp.StatusCode,
			OK:        resp.StatusCode >= 200 && resp.StatusCode < 300,
			RequestID: reqID,
		},
		Data: data,
	}

	outcome := "ok"
	if !out.Meta.OK {
		outcome = "rejected"
	}
	metrics.RequestsTotal.WithLabelValues(op, outcome).Inc()

	c.logger.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Str("request_id", reqID).
		Msg("api call")

	return out, nil
}

// call sends a JSON request, turns non-2xx answers into *domain.APIError and
// decodes the body into out when out is non-nil.
func (c *Client) call(ctx context.Context, op, method, path string, in, out any) (*Response, error) {
	resp, err := c.Do(ctx, op, method, path, in)
	if err != nil {
		return nil, err
	}
	if !resp.Meta.OK {
		return resp, fmt.Errorf("%s: %w", op, mapError(resp))
	}
	if out != nil {
		if err := resp.Decode(out); err != nil {
			return resp, fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return resp, nil
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + "/" + strings.TrimLeft(path, "/")
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// messageOnly is the common {"message": "..."} answer.
type messageOnly struct {
	Message string `json:"message"`
}
