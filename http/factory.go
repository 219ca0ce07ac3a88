package http

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/wesleyorama2/lazyapi/config"
)

// TransportOptions are extra handle settings that are not part of a
// ClientConfig.
type TransportOptions struct {
	// RoundTripper replaces the pooled transport built from the config.
	// Pool limits and ConnectTimeout are then up to the caller.
	RoundTripper http.RoundTripper

	TLSConfig *tls.Config

	// Proxy is a proxy URL such as http://proxy:3128
	Proxy string

	// EnableTrace records per-phase timings on every response
	EnableTrace bool

	// RequestIDHeader, when set, gets a fresh UUID on requests that do not
	// already carry it
	RequestIDHeader string

	// Extra is called last on every new handle
	Extra func(*resty.Client)
}

func (o TransportOptions) isZero() bool {
	return o.RoundTripper == nil && o.TLSConfig == nil && o.Proxy == "" &&
		!o.EnableTrace && o.RequestIDHeader == "" && o.Extra == nil
}

// FactoryOptions configures a Factory. Nil configs are resolved from
// Source, which defaults to the process environment.
type FactoryOptions struct {
	SyncConfig  *config.ClientConfig
	AsyncConfig *config.ClientConfig
	Source      config.Source
	Logger      *slog.Logger
}

// Factory builds transport handles and owns the process-wide default
// handle for each mode.
type Factory struct {
	configs map[config.Profile]config.ClientConfig
	errs    map[config.Profile]error
	logger  *slog.Logger
	created atomic.Int64

	mu       sync.Mutex
	defaults map[config.Profile]*resty.Client
}

// NewFactory creates a factory from opts. A profile whose config cannot be
// resolved keeps the built-in defaults for Config, and every handle built
// from it fails with the *config.ConfigError.
func NewFactory(opts FactoryOptions) *Factory {
	f := &Factory{
		configs:  make(map[config.Profile]config.ClientConfig, 2),
		errs:     make(map[config.Profile]error, 2),
		logger:   opts.Logger,
		defaults: make(map[config.Profile]*resty.Client, 2),
	}
	if f.logger == nil {
		f.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	src := opts.Source
	if src == nil {
		src = config.EnvSource()
	}
	f.pick(config.ProfileSync, opts.SyncConfig, src)
	f.pick(config.ProfileAsync, opts.AsyncConfig, src)
	return f
}

// NewFactoryFromSource resolves both profiles from src.
func NewFactoryFromSource(src config.Source) (*Factory, error) {
	syncCfg, err := config.Resolve(config.ProfileSync, src, config.Overrides{})
	if err != nil {
		return nil, err
	}
	asyncCfg, err := config.Resolve(config.ProfileAsync, src, config.Overrides{})
	if err != nil {
		return nil, err
	}
	return NewFactory(FactoryOptions{SyncConfig: &syncCfg, AsyncConfig: &asyncCfg}), nil
}

func (f *Factory) pick(profile config.Profile, cfg *config.ClientConfig, src config.Source) {
	if cfg != nil {
		f.configs[profile] = cfg.Clone()
		return
	}
	resolved, err := config.Resolve(profile, src, config.Overrides{})
	if err != nil {
		f.logger.Debug("config resolution failed", "profile", profile, "error", err)
		f.configs[profile] = config.Defaults(profile)
		f.errs[profile] = err
		return
	}
	f.configs[profile] = resolved
}

// Err reports the resolution error for profile, if any.
func (f *Factory) Err(profile config.Profile) error {
	return f.errs[profile]
}

// Config returns a copy of the factory config for profile.
func (f *Factory) Config(profile config.Profile) config.ClientConfig {
	return f.configs[profile].Clone()
}

// NewHandle builds a fresh handle. A nil cfg uses the factory config for
// profile. Non-empty headers replace the config headers rather than
// merging with them.
func (f *Factory) NewHandle(profile config.Profile, baseURL string, cfg *config.ClientConfig, headers map[string]string, topts TransportOptions) (*resty.Client, error) {
	var resolved config.ClientConfig
	if cfg != nil {
		resolved = cfg.Clone()
	} else {
		c, ok := f.configs[profile]
		if !ok {
			return nil, &config.ConfigError{Key: "profile", Value: string(profile), Message: "unknown profile"}
		}
		if err := f.errs[profile]; err != nil {
			return nil, err
		}
		resolved = c.Clone()
	}
	if len(headers) > 0 {
		resolved.Headers = config.ClientConfig{Headers: headers}.Clone().Headers
	}

	rt := topts.RoundTripper
	if rt == nil {
		tr, err := newTransport(resolved, topts)
		if err != nil {
			return nil, err
		}
		rt = tr
	}

	handle := resty.New().
		SetTransport(rt).
		SetBaseURL(baseURL).
		SetTimeout(resolved.Timeout).
		SetHeaders(resolved.Headers)

	if topts.EnableTrace {
		handle.EnableTrace()
	}
	if name := topts.RequestIDHeader; name != "" {
		handle.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if r.Header.Get(name) == "" {
				r.SetHeader(name, uuid.NewString())
			}
			return nil
		})
	}
	if topts.Extra != nil {
		topts.Extra(handle)
	}

	n := f.created.Add(1)
	f.logger.Debug("transport handle created",
		"profile", profile,
		"base_url", baseURL,
		"config", resolved.String(),
		"handles", n,
	)
	return handle, nil
}

func newTransport(cfg config.ClientConfig, topts TransportOptions) (*http.Transport, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConns = cfg.MaxKeepAliveConnections
	tr.MaxIdleConnsPerHost = cfg.MaxKeepAliveConnections
	// net/http reads zero as "no limit"; here it means no idle pool at all.
	tr.DisableKeepAlives = cfg.MaxKeepAliveConnections == 0
	tr.MaxConnsPerHost = cfg.MaxConnections
	tr.DialContext = (&net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	if cfg.ConnectTimeout > 0 {
		tr.TLSHandshakeTimeout = cfg.ConnectTimeout
	}
	if topts.TLSConfig != nil {
		tr.TLSClientConfig = topts.TLSConfig.Clone()
	}
	if topts.Proxy != "" {
		u, err := url.Parse(topts.Proxy)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q", topts.Proxy)
		}
		tr.Proxy = http.ProxyURL(u)
	}
	return tr, nil
}

// Handle returns the process default sync handle, building it on first use.
func (f *Factory) Handle() (*resty.Client, error) {
	return f.defaultHandle(config.ProfileSync)
}

// AsyncHandle returns the process default async handle, building it on
// first use.
func (f *Factory) AsyncHandle() (*resty.Client, error) {
	return f.defaultHandle(config.ProfileAsync)
}

func (f *Factory) defaultHandle(profile config.Profile) (*resty.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if h, ok := f.defaults[profile]; ok {
		return h, nil
	}
	h, err := f.NewHandle(profile, "", nil, nil, TransportOptions{})
	if err != nil {
		return nil, err
	}
	f.defaults[profile] = h
	return h, nil
}

// Reset drops the default handles; the next Handle call builds new ones.
func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defaults = make(map[config.Profile]*resty.Client, 2)
}

// HandlesCreated reports how many handles this factory has built.
func (f *Factory) HandlesCreated() int64 {
	return f.created.Load()
}
