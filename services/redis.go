// Package services holds connection settings for the backing services a
// lazyapi application talks to.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wesleyorama2/lazyapi/config"
)

// Redis source keys.
const (
	KeyRedisHost           = "REDIS_HOST"
	KeyRedisPort           = "REDIS_PORT"
	KeyRedisPassword       = "REDIS_PASS"
	KeyRedisDB             = "REDIS_DB"
	KeyRedisSentinel       = "REDIS_SENTINEL"
	KeyRedisSentinelMaster = "REDIS_SENTINEL_MASTER"
	KeyRedisFallback       = "REDIS_FALLBACK_ENABLED"
	KeyRedisLocal          = "REDIS_LOCAL"
)

const (
	DefaultRedisHost = "127.0.0.1"
	DefaultRedisPort = 6379

	// checkTimeout bounds dial, read and write during CheckConnection.
	checkTimeout = 5 * time.Second
)

// ErrRedisUnavailable is returned by Ensure when no server answers.
var ErrRedisUnavailable = errors.New("unable to establish redis connection")

// RedisConfig describes how to reach Redis.
type RedisConfig struct {
	Host           string `json:"host" yaml:"host"`
	Port           int    `json:"port" yaml:"port"`
	Password       string `json:"-" yaml:"-"`
	Database       int    `json:"database" yaml:"database"`
	Sentinel       bool   `json:"sentinel" yaml:"sentinel"`
	SentinelMaster string `json:"sentinelMaster,omitempty" yaml:"sentinelMaster,omitempty"`

	// FallbackEnabled lets Ensure retry against the local defaults
	FallbackEnabled bool `json:"fallbackEnabled" yaml:"fallbackEnabled"`

	// Local means the local defaults are preferred over the configured host
	Local bool `json:"local" yaml:"local"`
}

// DefaultRedisConfig returns the built-in settings.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:            DefaultRedisHost,
		Port:            DefaultRedisPort,
		FallbackEnabled: true,
		Local:           true,
	}
}

// ResolveRedis reads REDIS_* keys from src on top of the defaults.
func ResolveRedis(src config.Source) (RedisConfig, error) {
	cfg := DefaultRedisConfig()
	if src == nil {
		return cfg, nil
	}
	get := func(key string) (string, bool) {
		v, ok := src.Lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(KeyRedisHost); ok {
		cfg.Host = v
	}
	if v, ok := get(KeyRedisPassword); ok {
		cfg.Password = v
	}
	if v, ok := get(KeyRedisSentinelMaster); ok {
		cfg.SentinelMaster = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{KeyRedisPort, &cfg.Port},
		{KeyRedisDB, &cfg.Database},
	}
	for _, f := range ints {
		if v, ok := get(f.key); ok {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return RedisConfig{}, &config.ConfigError{Key: f.key, Value: v, Message: "must be a non-negative integer", Err: err}
			}
			*f.dst = n
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{KeyRedisSentinel, &cfg.Sentinel},
		{KeyRedisFallback, &cfg.FallbackEnabled},
		{KeyRedisLocal, &cfg.Local},
	}
	for _, f := range bools {
		if v, ok := get(f.key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return RedisConfig{}, &config.ConfigError{Key: f.key, Value: v, Message: "must be a boolean", Err: err}
			}
			*f.dst = b
		}
	}
	return cfg, nil
}

// Addr is host:port.
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Options returns go-redis options for a direct connection.
func (c RedisConfig) Options() *redis.Options {
	return &redis.Options{
		Addr:     c.Addr(),
		Password: c.Password,
		DB:       c.Database,
	}
}

// FailoverOptions returns go-redis options for a sentinel-managed master,
// with the configured address as the only sentinel.
func (c RedisConfig) FailoverOptions() *redis.FailoverOptions {
	return &redis.FailoverOptions{
		MasterName:    c.SentinelMaster,
		SentinelAddrs: []string{c.Addr()},
		Password:      c.Password,
		DB:            c.Database,
	}
}

// NewClient opens a client for the config, going through sentinel when
// Sentinel is set.
func (c RedisConfig) NewClient() redis.UniversalClient {
	if c.Sentinel {
		return redis.NewFailoverClient(c.FailoverOptions())
	}
	return redis.NewClient(c.Options())
}

// CheckConnection pings the server with short timeouts and reports whether
// it answered.
func (c RedisConfig) CheckConnection(ctx context.Context) bool {
	opts := c.Options()
	opts.DialTimeout = checkTimeout
	opts.ReadTimeout = checkTimeout
	opts.WriteTimeout = checkTimeout
	opts.MaxRetries = -1

	client := redis.NewClient(opts)
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}

// SetDefaults points the config back at the local default server.
func (c *RedisConfig) SetDefaults() {
	c.Host = DefaultRedisHost
	c.Port = DefaultRedisPort
	c.Password = ""
}

// Ensure verifies a server is reachable. A remote server is tried first
// unless Local is set. The local defaults are tried only when both Local
// and FallbackEnabled are set. It never starts a server.
func (c *RedisConfig) Ensure(ctx context.Context, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if !c.Local && c.CheckConnection(ctx) {
		logger.Info("external redis connection successful", "addr", c.Addr())
		return nil
	}
	if !c.FallbackEnabled {
		return fmt.Errorf("%w at %s", ErrRedisUnavailable, c.Addr())
	}

	if c.Local {
		c.SetDefaults()
		if c.CheckConnection(ctx) {
			logger.Info("local redis connection successful", "addr", c.Addr())
			return nil
		}
	}
	logger.Info("unable to establish redis connection", "addr", c.Addr())
	return fmt.Errorf("%w at %s", ErrRedisUnavailable, c.Addr())
}
