package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Profile selects one of the two independent client configurations.
type Profile string

const (
	// ProfileSync configures handles used by blocking calls
	ProfileSync Profile = "sync"
	// ProfileAsync configures handles used by future-returning calls
	ProfileAsync Profile = "async"
)

// Built-in defaults shared by both profiles.
const (
	DefaultTimeout                 = 30 * time.Second
	DefaultMaxKeepAliveConnections = 50
	DefaultMaxConnections          = 200
)

// DefaultHeaders returns a fresh copy of the default request headers.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
	}
}

// ClientConfig holds the settings a transport handle is built from.
type ClientConfig struct {
	// Timeout bounds a whole request, including reading the body
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// ConnectTimeout bounds dialing; it defaults to Timeout
	ConnectTimeout time.Duration `json:"connectTimeout" yaml:"connectTimeout"`

	// MaxKeepAliveConnections is the size of the idle connection pool;
	// zero disables keep-alive
	MaxKeepAliveConnections int `json:"maxKeepAliveConnections" yaml:"maxKeepAliveConnections"`

	// MaxConnections caps connections per host; a hand-built zero means
	// no cap, while sources must give at least 1
	MaxConnections int `json:"maxConnections" yaml:"maxConnections"`

	// Headers are sent with every request made through the handle
	Headers map[string]string `json:"headers" yaml:"headers"`
}

// Clone returns a deep copy. Handles are built from clones so later edits
// to a config never reach a handle that already exists.
func (c ClientConfig) Clone() ClientConfig {
	out := c
	if c.Headers != nil {
		out.Headers = make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			out.Headers[k] = v
		}
	}
	return out
}

// Overrides are caller-supplied values that win over every source.
// Zero values mean "not supplied".
type Overrides struct {
	Timeout                 time.Duration
	ConnectTimeout          time.Duration
	MaxKeepAliveConnections int
	MaxConnections          int
	Headers                 map[string]string
}

// Keys lists the source keys a profile reads.
type Keys struct {
	Timeout        string
	ConnectTimeout string
	KeepAlive      string
	MaxConnect     string
	Headers        string
}

// KeysFor returns the source keys for profile.
func KeysFor(profile Profile) Keys {
	prefix := "HTTPX_"
	if profile == ProfileAsync {
		prefix = "HTTPX_ASYNC_"
	}
	return Keys{
		Timeout:        prefix + "TIMEOUT",
		ConnectTimeout: prefix + "CONNECT_TIMEOUT",
		KeepAlive:      prefix + "KEEPALIVE",
		MaxConnect:     prefix + "MAXCONNECT",
		Headers:        prefix + "HEADERS",
	}
}

// Defaults returns the built-in configuration. Both profiles share the
// same values; the profile argument keeps call sites symmetric.
func Defaults(profile Profile) ClientConfig {
	_ = profile
	return ClientConfig{
		Timeout:                 DefaultTimeout,
		ConnectTimeout:          DefaultTimeout,
		MaxKeepAliveConnections: DefaultMaxKeepAliveConnections,
		MaxConnections:          DefaultMaxConnections,
		Headers:                 DefaultHeaders(),
	}
}

// Resolve builds the configuration for profile. A nil src behaves like an
// empty source.
func Resolve(profile Profile, src Source, ov Overrides) (ClientConfig, error) {
	if profile != ProfileSync && profile != ProfileAsync {
		return ClientConfig{}, &ConfigError{Key: "profile", Value: string(profile), Message: "unknown profile"}
	}
	if src == nil {
		src = MapSource(nil)
	}

	keys := KeysFor(profile)
	cfg := Defaults(profile)

	timeoutSet := false
	if raw, ok := lookup(src, keys.Timeout); ok {
		d, err := parseSeconds(keys.Timeout, raw)
		if err != nil {
			return ClientConfig{}, err
		}
		cfg.Timeout = d
		timeoutSet = true
	}
	if ov.Timeout > 0 {
		cfg.Timeout = ov.Timeout
		timeoutSet = true
	}

	// ConnectTimeout follows Timeout unless it is set on its own.
	if timeoutSet {
		cfg.ConnectTimeout = cfg.Timeout
	}
	if raw, ok := lookup(src, keys.ConnectTimeout); ok {
		d, err := parseSeconds(keys.ConnectTimeout, raw)
		if err != nil {
			return ClientConfig{}, err
		}
		cfg.ConnectTimeout = d
	}
	if ov.ConnectTimeout > 0 {
		cfg.ConnectTimeout = ov.ConnectTimeout
	}

	if raw, ok := lookup(src, keys.KeepAlive); ok {
		n, err := parseCount(keys.KeepAlive, raw)
		if err != nil {
			return ClientConfig{}, err
		}
		cfg.MaxKeepAliveConnections = n
	}
	if ov.MaxKeepAliveConnections > 0 {
		cfg.MaxKeepAliveConnections = ov.MaxKeepAliveConnections
	}

	if raw, ok := lookup(src, keys.MaxConnect); ok {
		n, err := parseCount(keys.MaxConnect, raw)
		if err != nil {
			return ClientConfig{}, err
		}
		if n == 0 {
			return ClientConfig{}, &ConfigError{Key: keys.MaxConnect, Value: raw, Message: "must be at least 1"}
		}
		cfg.MaxConnections = n
	}
	if ov.MaxConnections > 0 {
		cfg.MaxConnections = ov.MaxConnections
	}

	if raw, ok := lookup(src, keys.Headers); ok {
		h, err := parseHeaders(keys.Headers, raw)
		if err != nil {
			return ClientConfig{}, err
		}
		cfg.Headers = h
	}
	if len(ov.Headers) > 0 {
		cfg.Headers = ClientConfig{Headers: ov.Headers}.Clone().Headers
	}

	if errs := ValidateClientConfig(&cfg); len(errs) > 0 {
		return ClientConfig{}, &ConfigError{Key: errs[0].Path, Message: errs[0].Message}
	}
	return cfg, nil
}

// MustResolve is Resolve for package-level initialisation; it panics on a
// malformed source.
func MustResolve(profile Profile, src Source) ClientConfig {
	cfg, err := Resolve(profile, src, Overrides{})
	if err != nil {
		panic(err)
	}
	return cfg
}

// lookup treats blank values as absent.
func lookup(src Source, key string) (string, bool) {
	raw, ok := src.Lookup(key)
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	return raw, true
}

// parseSeconds accepts float seconds ("2.5") or a Go duration ("2500ms").
func parseSeconds(key, raw string) (time.Duration, error) {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if f <= 0 {
			return 0, &ConfigError{Key: key, Value: raw, Message: "must be positive"}
		}
		return time.Duration(f * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &ConfigError{Key: key, Value: raw, Message: "not a number of seconds or a duration", Err: err}
	}
	if d <= 0 {
		return 0, &ConfigError{Key: key, Value: raw, Message: "must be positive"}
	}
	return d, nil
}

func parseCount(key, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigError{Key: key, Value: raw, Message: "not an integer", Err: err}
	}
	if n < 0 {
		return 0, &ConfigError{Key: key, Value: raw, Message: "must not be negative"}
	}
	return n, nil
}

func parseHeaders(key, raw string) (map[string]string, error) {
	var h map[string]string
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		return nil, &ConfigError{Key: key, Value: raw, Message: "not a JSON object of strings", Err: err}
	}
	if h == nil {
		return nil, &ConfigError{Key: key, Value: raw, Message: "not a JSON object of strings"}
	}
	return h, nil
}

func parseBool(key, raw string) (bool, error) {
	b, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		return false, &ConfigError{Key: key, Value: raw, Message: "not a boolean", Err: err}
	}
	return b, nil
}

// String renders the config for logs; header values are not printed.
func (c ClientConfig) String() string {
	names := make([]string, 0, len(c.Headers))
	for k := range c.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	return fmt.Sprintf("timeout=%s connect=%s keepalive=%d maxconn=%d headers=%v",
		c.Timeout, c.ConnectTimeout, c.MaxKeepAliveConnections, c.MaxConnections, names)
}
