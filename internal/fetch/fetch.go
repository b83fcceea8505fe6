// Package fetch performs the plain HTTP GETs used to download crash reports
// and modpack manifests.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultMaxBodyBytes caps a downloaded body unless the client is configured otherwise.
const DefaultMaxBodyBytes = 16 << 20

// ErrBodyTooLarge is returned when a body does not fit under the client's cap.
var ErrBodyTooLarge = errors.New("response body too large")

// ErrStatus matches every *StatusError.
var ErrStatus = errors.New("unexpected HTTP status")

// StatusError reports a response that was received but was not 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (r *Response) Text() string {
	return string(r.Body)
}

// Err returns a *StatusError unless the response is 200 OK.
func (r *Response) Err() error {
	if r.StatusCode != http.StatusOK {
		return &StatusError{URL: r.URL, StatusCode: r.StatusCode}
	}
	return nil
}

// Fetcher is the one operation the rest of the module needs from HTTP.
type Fetcher interface {
	Get(ctx context.Context, url string, headers ...Header) (*Response, error)
}

type Header struct {
	Key   string
	Value string
}

type Client struct {
	http      *http.Client
	userAgent string
	maxBody   int64
}

type Option func(*Client)

// WithTimeout sets an overall per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		userAgent: "crashscope",
		maxBody:   DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get downloads url. Any status is returned as a Response; only transport and
// read failures, or a body over the cap, are errors.
func (c *Client) Get(ctx context.Context, url string, headers ...Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("read body of %s: %w (limit %d bytes)", url, ErrBodyTooLarge, c.maxBody)
	}

	return &Response{URL: url, StatusCode: resp.StatusCode, Body: body}, nil
}
