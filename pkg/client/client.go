// Package client implements the request pipeline shared by every OVEX
// endpoint: parameter normalization, signing, dispatch and error
// classification.
package client

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/rs/zerolog"

	"ovex/internal/auth"
	"ovex/internal/transport"
	"ovex/pkg/core"
)

// Client is the base client. It is safe for concurrent use; the only state
// shared between calls is the nonce source.
type Client struct {
	config    *core.Config
	basePath  string
	transport *transport.Client
	signer    *auth.Signer
	nonces    auth.NonceSource
	logger    zerolog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Options)

// Options holds optional collaborators of the Client.
type Options struct {
	Logger zerolog.Logger
	Nonces auth.NonceSource
}

// WithLogger returns an option that sets the logger for the client.
// A non-empty Config.LogLevel caps its level.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithNonceSource replaces the default millisecond clock nonce.
func WithNonceSource(n auth.NonceSource) Option {
	return func(o *Options) {
		o.Nonces = n
	}
}

// New creates a base client from config. Credentials are optional; without
// them only public endpoints can be called.
func New(config *core.Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, core.NewConfigurationError(core.ErrCodeInvalidConfig, "config is required", nil)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Nonces == nil {
		options.Nonces = auth.NewClockNonce()
	}

	logger := options.Logger
	if config.LogLevel != "" {
		level, err := zerolog.ParseLevel(config.LogLevel)
		if err != nil {
			level = zerolog.InfoLevel
		}
		logger = logger.Level(level)
	}
	logger = logger.With().Str("component", "ovex").Logger()

	tr, err := transport.NewClient(&transport.Config{
		BaseURL:   strings.TrimSuffix(config.BaseURL, "/"),
		Timeout:   config.Timeout,
		UserAgent: config.UserAgent,
	}, logger)
	if err != nil {
		return nil, core.NewConfigurationError(core.ErrCodeInvalidConfig, "create transport", err)
	}

	return &Client{
		config:    config,
		basePath:  config.BasePath(),
		transport: tr,
		signer:    auth.NewSigner(config.Credentials),
		nonces:    options.Nonces,
		logger:    logger,
	}, nil
}

// Do builds and executes a request. params entries that are nil are left
// out of the request. The decoded JSON body is returned as-is.
func (c *Client) Do(ctx context.Context, method, path string, params core.Params, requireAuth bool) (any, error) {
	req := core.NewRequest(method, path).SetParams(params).SetRequireAuth(requireAuth)
	return c.Execute(ctx, req)
}

// Execute runs req through the pipeline: validate, encode, sign, send,
// classify and decode. Exactly one HTTP attempt is made.
func (c *Client) Execute(ctx context.Context, req *core.Request) (any, error) {
	call, err := c.buildCall(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Do(ctx, call)
	if err != nil {
		if errors.Is(err, core.ErrClientClosed) {
			return nil, core.NewConfigurationError(core.ErrCodeClientClosed, "client is closed", err)
		}
		return nil, classifyTransportError(ctx, err)
	}

	if !resp.IsSuccess() {
		apiErr := parseAPIError(resp.StatusCode, resp.Body)
		apiErr.RetryAfter = retryAfter(resp.Headers)
		return nil, apiErr
	}

	return decodeBody(resp.StatusCode, resp.Body)
}

func (c *Client) buildCall(req *core.Request) (*transport.Call, error) {
	if err := req.Validate(c.basePath); err != nil {
		return nil, err
	}

	call := &transport.Call{
		Method:  req.Method,
		Path:    req.Path,
		Headers: make(map[string]string),
	}

	var payload string
	if req.HasBody() {
		body, err := encodeBody(req.Params)
		if err != nil {
			return nil, core.NewValidationError(core.ErrCodeInvalidParam, "encode request body", err)
		}
		call.Body = body
		payload = string(body)
	} else {
		call.Query = req.Params.Values()
	}

	if req.RequireAuth {
		headers, err := c.signer.SignNext(c.nonces, req.Method, c.basePath+req.Path, payload)
		if err != nil {
			return nil, err
		}
		for k, v := range headers.Map() {
			call.Headers[k] = v
		}
	}

	return call, nil
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

// Config returns the configuration used to create the client.
func (c *Client) Config() *core.Config {
	return c.config
}

// Logger returns the client's logger.
func (c *Client) Logger() zerolog.Logger {
	return c.logger
}

func classifyTransportError(ctx context.Context, err error) error {
	code := core.ErrCodeNetwork

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		code = core.ErrCodeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		code = core.ErrCodeTimeout
	}

	return core.NewTransportError(code, err)
}
