// Package transport provides the HTTP transport used to reach the exchange.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"ovex/pkg/core"
)

// Client wraps a resty HTTP client. It makes exactly one attempt per call.
type Client struct {
	client *resty.Client
	logger zerolog.Logger
	mu     sync.RWMutex
	closed bool
}

// Config holds transport settings.
type Config struct {
	BaseURL   string            `validate:"required,url"`
	Timeout   time.Duration     `validate:"min=1ms"`
	UserAgent string            `validate:"omitempty"`
	Headers   map[string]string `validate:"omitempty"`
}

// Call is a fully built HTTP request. Body is sent as-is.
type Call struct {
	Method  string
	Path    string
	Query   url.Values
	Body    []byte
	Headers map[string]string
}

// Response represents an HTTP response with its status code, body, and headers.
type Response struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int

	// Body contains the raw response body bytes.
	Body []byte

	// Headers contains the response headers as key-value pairs.
	Headers map[string]string
}

// NewClient creates a new HTTP client with retries disabled.
func NewClient(config *Config, logger zerolog.Logger) (*Client, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid transport config: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(config.BaseURL)
	client.SetTimeout(config.Timeout)
	client.SetRetryCount(0)
	if config.UserAgent != "" {
		client.SetHeader("User-Agent", config.UserAgent)
	}
	client.SetHeader("Accept", "application/json")
	for k, v := range config.Headers {
		client.SetHeader(k, v)
	}

	return &Client{
		client: client,
		logger: logger,
	}, nil
}

// Do executes call and returns the response. A non-nil error means no
// response was received; HTTP error statuses are returned as responses.
func (c *Client) Do(ctx context.Context, call *Call) (*Response, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, core.ErrClientClosed
	}

	r := c.client.R().SetContext(ctx)

	for k, v := range call.Headers {
		r.SetHeader(k, v)
	}

	if len(call.Query) > 0 {
		r.SetQueryParamsFromValues(call.Query)
	}

	if call.Body != nil {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(call.Body)
	}

	var resp *resty.Response
	var err error

	switch call.Method {
	case http.MethodGet:
		resp, err = r.Get(call.Path)
	case http.MethodPost:
		resp, err = r.Post(call.Path)
	case http.MethodPut:
		resp, err = r.Put(call.Path)
	case http.MethodDelete:
		resp, err = r.Delete(call.Path)
	default:
		return nil, fmt.Errorf("unsupported http method: %s", call.Method)
	}

	if err != nil {
		c.logger.Error().Err(err).
			Str("method", call.Method).
			Str("path", call.Path).
			Msg("http request failed")
		return nil, fmt.Errorf("http request: %w", err)
	}

	c.logger.Debug().
		Str("method", call.Method).
		Str("path", call.Path).
		Int("status", resp.StatusCode()).
		Int("size", len(resp.Bytes())).
		Msg("http response")

	headers := make(map[string]string)
	for k, v := range resp.Header() {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Bytes(),
		Headers:    headers,
	}, nil
}

// Close releases idle connections. Later calls fail with core.ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// IsSuccess returns true if the response status code indicates success (2xx).
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
