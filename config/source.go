package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Source is a read-only key/value lookup, such as the process environment.
type Source interface {
	Lookup(key string) (string, bool)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(key string) (string, bool)

// Lookup calls f(key).
func (f SourceFunc) Lookup(key string) (string, bool) {
	return f(key)
}

// EnvSource reads the process environment.
func EnvSource() Source {
	return SourceFunc(os.LookupEnv)
}

// MapSource is an in-memory source; a nil map has no keys.
type MapSource map[string]string

// Lookup returns m[key].
func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Chain returns a source that asks each source in order and returns the
// first hit. Nil sources are skipped.
func Chain(sources ...Source) Source {
	return SourceFunc(func(key string) (string, bool) {
		for _, s := range sources {
			if s == nil {
				continue
			}
			if v, ok := s.Lookup(key); ok {
				return v, true
			}
		}
		return "", false
	})
}

// DotEnvSource parses a .env file without touching the process environment.
func DotEnvSource(path string) (MapSource, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("error reading env file %s: %w", path, err)
	}
	return MapSource(vars), nil
}

// fileSource exposes the top-level keys of a config file.
type fileSource struct {
	v *viper.Viper
}

// FileSource reads a yaml, json, toml or dotenv file. The file type is
// taken from the extension. Keys are matched case-insensitively; nested
// maps (for example a headers table) are returned as JSON with their keys
// lower-cased.
func FileSource(path string) (Source, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return &fileSource{v: v}, nil
}

func (s *fileSource) Lookup(key string) (string, bool) {
	if !s.v.IsSet(key) {
		return "", false
	}
	switch val := s.v.Get(key).(type) {
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(data), true
	default:
		return s.v.GetString(key), true
	}
}
