package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/wesleyorama2/lazyapi/config"
	"github.com/wesleyorama2/lazyapi/metrics"
)

// Mode is the execution mode a request was made in.
type Mode string

const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

func (m Mode) profile() config.Profile {
	if m == ModeAsync {
		return config.ProfileAsync
	}
	return config.ProfileSync
}

// Result is what every verb method returns: a *Response by default, or the
// untouched *resty.Response when the client was built with RawResponses.
type Result interface {
	StatusCode() int
	Body() []byte
	String() string
}

var (
	_ Result = (*Response)(nil)
	_ Result = (*resty.Response)(nil)
)

// Options configures a Client. The zero value is usable.
type Options struct {
	// BaseURL is prepended to every request path
	BaseURL string

	// Headers, when non-empty, replace the config headers on both handles
	Headers map[string]string

	// SyncConfig and AsyncConfig override the factory configs
	SyncConfig  *config.ClientConfig
	AsyncConfig *config.ClientConfig

	Transport TransportOptions

	// RawResponses returns *resty.Response values instead of envelopes
	RawResponses bool

	// Factory builds the handles; nil means a private default factory
	Factory *Factory

	Logger   *slog.Logger
	Recorder *metrics.Recorder
}

// Client is a REST client bound to one base URL. It holds one lazily built
// handle per mode.
type Client struct {
	mu          sync.Mutex
	opts        Options
	syncHandle  *resty.Client
	asyncHandle *resty.Client
}

// NewClient creates a client. No handle is built until first use.
//
// Example:
//
//	client := http.NewClient(http.Options{
//	    BaseURL: "https://api.example.com",
//	    Headers: map[string]string{"Authorization": "Bearer token"},
//	})
func NewClient(opts Options) *Client {
	opts.Headers = copyHeaders(opts.Headers)
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Factory == nil {
		opts.Factory = NewFactory(FactoryOptions{Logger: opts.Logger})
	}
	return &Client{opts: opts}
}

// BaseURL returns the current base URL.
func (c *Client) BaseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.BaseURL
}

// Headers returns a copy of the explicit client headers.
func (c *Client) Headers() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyHeaders(c.opts.Headers)
}

// RawResponses reports whether verb methods skip the envelope.
func (c *Client) RawResponses() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.RawResponses
}

// Factory returns the factory that builds this client's handles.
func (c *Client) Factory() *Factory {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.Factory
}

// SyncHandle returns the sync handle, building it on first use.
func (c *Client) SyncHandle() (*resty.Client, error) {
	return c.handle(ModeSync)
}

// AsyncHandle returns the async handle, building it on first use.
func (c *Client) AsyncHandle() (*resty.Client, error) {
	return c.handle(ModeAsync)
}

func (c *Client) handle(mode Mode) (*resty.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot := &c.syncHandle
	cfg := c.opts.SyncConfig
	if mode == ModeAsync {
		slot = &c.asyncHandle
		cfg = c.opts.AsyncConfig
	}
	if *slot != nil {
		return *slot, nil
	}

	h, err := c.opts.Factory.NewHandle(mode.profile(), c.opts.BaseURL, cfg, c.opts.Headers, c.opts.Transport)
	if err != nil {
		return nil, err
	}
	*slot = h
	return h, nil
}

// Reset applies the non-zero fields of opts and drops both handles so the
// next request in either mode builds a new one. Requests already in flight
// finish on the handle they started with.
func (c *Client) Reset(opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if opts.BaseURL != "" {
		c.opts.BaseURL = opts.BaseURL
	}
	if len(opts.Headers) > 0 {
		c.opts.Headers = copyHeaders(opts.Headers)
	}
	if opts.SyncConfig != nil {
		c.opts.SyncConfig = opts.SyncConfig
	}
	if opts.AsyncConfig != nil {
		c.opts.AsyncConfig = opts.AsyncConfig
	}
	if !opts.Transport.isZero() {
		c.opts.Transport = opts.Transport
	}
	if opts.RawResponses {
		c.opts.RawResponses = true
	}
	if opts.Factory != nil {
		c.opts.Factory = opts.Factory
	}
	if opts.Logger != nil {
		c.opts.Logger = opts.Logger
	}
	if opts.Recorder != nil {
		c.opts.Recorder = opts.Recorder
	}

	c.syncHandle = nil
	c.asyncHandle = nil
	c.opts.Logger.Debug("client reset", "base_url", c.opts.BaseURL)
}

// call is a request bound to the handle and settings current at issue time.
type call struct {
	handle   *resty.Client
	mode     Mode
	raw      bool
	logger   *slog.Logger
	recorder *metrics.Recorder
}

func (c *Client) prepare(mode Mode) (*call, error) {
	h, err := c.handle(mode)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return &call{
		handle:   h,
		mode:     mode,
		raw:      c.opts.RawResponses,
		logger:   c.opts.Logger,
		recorder: c.opts.Recorder,
	}, nil
}

// do executes one request. Transport errors are returned unchanged.
func (k *call) do(ctx context.Context, method, path string, opts []RequestOption) (Result, error) {
	req := NewRequest(method, path, opts...)
	ctx, cancel := req.context(ctx)
	defer cancel()

	rr := req.apply(k.handle.R().SetContext(ctx))

	start := time.Now()
	raw, err := rr.Execute(method, path)
	elapsed := time.Since(start)

	if err != nil {
		k.recorder.Record(string(k.mode), 0, elapsed)
		k.logger.Debug("request failed", "mode", k.mode, "method", method, "path", path, "error", err)
		return nil, err
	}

	k.recorder.Record(string(k.mode), raw.StatusCode(), elapsed)
	k.logger.Debug("request completed",
		"mode", k.mode,
		"method", method,
		"url", raw.Request.URL,
		"status", raw.StatusCode(),
		"elapsed", elapsed,
	)

	if k.raw {
		return raw, nil
	}
	return NewResponse(raw, k.mode, method), nil
}

func (c *Client) do(ctx context.Context, mode Mode, method, path string, opts []RequestOption) (Result, error) {
	k, err := c.prepare(mode)
	if err != nil {
		return nil, err
	}
	return k.do(ctx, method, path, opts)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (Result, error) {
	return c.do(ctx, ModeSync, http.MethodGet, path, opts)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, path string, opts ...RequestOption) (Result, error) {
	return c.do(ctx, ModeSync, http.MethodPost, path, opts)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, path string, opts ...RequestOption) (Result, error) {
	return c.do(ctx, ModeSync, http.MethodPut, path, opts)
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, opts ...RequestOption) (Result, error) {
	return c.do(ctx, ModeSync, http.MethodPatch, path, opts)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (Result, error) {
	return c.do(ctx, ModeSync, http.MethodDelete, path, opts)
}

// Head issues a HEAD request.
func (c *Client) Head(ctx context.Context, path string, opts ...RequestOption) (Result, error) {
	return c.do(ctx, ModeSync, http.MethodHead, path, opts)
}

// Do issues a request with any method in the given mode.
func (c *Client) Do(ctx context.Context, mode Mode, method, path string, opts ...RequestOption) (Result, error) {
	return c.do(ctx, mode, method, path, opts)
}

func copyHeaders(h map[string]string) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
