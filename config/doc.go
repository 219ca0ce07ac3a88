// Package config resolves HTTP client settings for the sync and async
// profiles from layered key/value sources.
//
// Resolution order for every field is: explicit overrides, then the first
// source that has the key, then the built-in defaults.
//
// Basic Usage:
//
//	cfg, err := config.Resolve(config.ProfileSync, config.EnvSource(), config.Overrides{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Timeout, cfg.MaxConnections)
//
// Environment Keys:
//
// The sync profile reads HTTPX_TIMEOUT, HTTPX_CONNECT_TIMEOUT,
// HTTPX_KEEPALIVE, HTTPX_MAXCONNECT and HTTPX_HEADERS. The async profile
// reads the same keys with an HTTPX_ASYNC_ prefix. Timeouts accept float
// seconds ("2.5") or Go durations ("2500ms"); headers must be a JSON object.
//
// Layered Sources:
//
//	dotenv, err := config.DotEnvSource(".env")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	src := config.Chain(config.EnvSource(), dotenv)
//
// Malformed values are never silently replaced by defaults; Resolve returns
// a *ConfigError naming the offending key.
package config
