package config

import (
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the field or key that failed validation
	Path string

	// Message describes the validation error
	Message string
}

// Error returns the error message.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ConfigError reports a malformed configuration value.
type ConfigError struct {
	Key     string
	Value   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config error in %s: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("config error in %s=%q: %s", e.Key, e.Value, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ValidateClientConfig checks a resolved or hand-built config and returns
// every problem found. An empty slice means the config is usable.
func ValidateClientConfig(cfg *ClientConfig) []ValidationError {
	if cfg == nil {
		return []ValidationError{{Path: "config", Message: "config cannot be nil"}}
	}

	var errors []ValidationError
	if cfg.Timeout <= 0 {
		errors = append(errors, ValidationError{Path: "timeout", Message: "must be positive"})
	}
	if cfg.ConnectTimeout < 0 {
		errors = append(errors, ValidationError{Path: "connectTimeout", Message: "must not be negative"})
	}
	if cfg.MaxKeepAliveConnections < 0 {
		errors = append(errors, ValidationError{Path: "maxKeepAliveConnections", Message: "must not be negative"})
	}
	if cfg.MaxConnections < 0 {
		errors = append(errors, ValidationError{Path: "maxConnections", Message: "must not be negative"})
	}
	for name := range cfg.Headers {
		if name == "" {
			errors = append(errors, ValidationError{Path: "headers", Message: "header name cannot be empty"})
			break
		}
	}
	return errors
}
