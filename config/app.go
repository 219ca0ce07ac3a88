package config

import (
	"strings"
)

// AppConfig describes the web application built by the server package.
type AppConfig struct {
	Title             string   `json:"title" yaml:"title"`
	Description       string   `json:"description" yaml:"description"`
	Version           string   `json:"version" yaml:"version"`
	IncludeMiddleware bool     `json:"includeMiddleware" yaml:"includeMiddleware"`
	AllowOrigins      []string `json:"allowOrigins" yaml:"allowOrigins"`
	AllowMethods      []string `json:"allowMethods" yaml:"allowMethods"`
	AllowHeaders      []string `json:"allowHeaders" yaml:"allowHeaders"`
	AllowCredentials  bool     `json:"allowCredentials" yaml:"allowCredentials"`
}

// App source keys.
const (
	KeyAppTitle         = "LAZYAPI_APP_TITLE"
	KeyAppDescription   = "LAZYAPI_APP_DESC"
	KeyAppVersion       = "LAZYAPI_APP_VERSION"
	KeyAppMiddleware    = "LAZYAPI_MIDDLEWARE"
	KeyAllowOrigins     = "LAZYAPI_ALLOW_ORIGINS"
	KeyAllowMethods     = "LAZYAPI_ALLOW_METHODS"
	KeyAllowHeaders     = "LAZYAPI_ALLOW_HEADERS"
	KeyAllowCredentials = "LAZYAPI_ALLOW_CREDENTIALS"
)

// DefaultAppConfig returns the built-in application settings.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Title:             "LazyAPI",
		Description:       "Just a LazyAPI Backend",
		Version:           "v0.0.1",
		IncludeMiddleware: true,
		AllowOrigins:      []string{"*"},
		AllowMethods:      []string{"*"},
		AllowHeaders:      []string{"*"},
		AllowCredentials:  true,
	}
}

// ResolveApp reads application settings from src on top of the defaults.
func ResolveApp(src Source) (AppConfig, error) {
	if src == nil {
		src = MapSource(nil)
	}
	cfg := DefaultAppConfig()

	if v, ok := lookup(src, KeyAppTitle); ok {
		cfg.Title = v
	}
	if v, ok := lookup(src, KeyAppDescription); ok {
		cfg.Description = v
	}
	if v, ok := lookup(src, KeyAppVersion); ok {
		cfg.Version = v
	}
	if v, ok := lookup(src, KeyAppMiddleware); ok {
		b, err := parseBool(KeyAppMiddleware, v)
		if err != nil {
			return AppConfig{}, err
		}
		cfg.IncludeMiddleware = b
	}
	if v, ok := lookup(src, KeyAllowCredentials); ok {
		b, err := parseBool(KeyAllowCredentials, v)
		if err != nil {
			return AppConfig{}, err
		}
		cfg.AllowCredentials = b
	}
	if v, ok := lookup(src, KeyAllowOrigins); ok {
		cfg.AllowOrigins = splitList(v)
	}
	if v, ok := lookup(src, KeyAllowMethods); ok {
		cfg.AllowMethods = splitList(v)
	}
	if v, ok := lookup(src, KeyAllowHeaders); ok {
		cfg.AllowHeaders = splitList(v)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
