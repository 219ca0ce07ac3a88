package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/wesleyorama2/lazyapi/config"
	lazyhttp "github.com/wesleyorama2/lazyapi/http"
	"github.com/wesleyorama2/lazyapi/metrics"
)

// newClient builds a client for baseURL from the resolved HTTPX_* configs
// and the command line overrides. -H headers are added to each profile's
// configured headers rather than replacing them.
func (o *rootOptions) newClient(baseURL string, rec *metrics.Recorder) (*lazyhttp.Client, error) {
	ov := config.Overrides{Timeout: o.timeout}

	syncCfg, err := config.Resolve(config.ProfileSync, o.source, ov)
	if err != nil {
		return nil, err
	}
	asyncCfg, err := config.Resolve(config.ProfileAsync, o.source, ov)
	if err != nil {
		return nil, err
	}

	extra, err := parseHeaders(o.headers)
	if err != nil {
		return nil, err
	}
	mergeHeaders(&syncCfg, extra)
	mergeHeaders(&asyncCfg, extra)

	factory := lazyhttp.NewFactory(lazyhttp.FactoryOptions{
		SyncConfig:  &syncCfg,
		AsyncConfig: &asyncCfg,
		Logger:      o.logger,
	})
	return lazyhttp.NewClient(lazyhttp.Options{
		BaseURL:      baseURL,
		Transport:    lazyhttp.TransportOptions{EnableTrace: o.trace},
		RawResponses: o.raw,
		Factory:      factory,
		Logger:       o.logger,
		Recorder:     rec,
	}), nil
}

func mergeHeaders(cfg *config.ClientConfig, extra map[string]string) {
	if len(extra) == 0 {
		return
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string, len(extra))
	}
	for k, v := range extra {
		cfg.Headers[k] = v
	}
}

// target resolves a command argument into a base URL and a path. A full
// URL wins over --base-url.
func (o *rootOptions) target(arg string) (string, string) {
	if o.baseURL != "" && !strings.Contains(arg, "://") {
		return o.baseURL, arg
	}
	return parseURL(arg)
}

// parseURL splits a URL into base URL and path
func parseURL(fullURL string) (string, string) {
	if !strings.HasPrefix(fullURL, "http://") && !strings.HasPrefix(fullURL, "https://") {
		fullURL = "http://" + fullURL
	}

	parsedURL, err := url.Parse(fullURL)
	if err != nil {
		return fullURL, "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	if parsedURL.User != nil {
		baseURL = fmt.Sprintf("%s://%s@%s", parsedURL.Scheme, parsedURL.User.String(), parsedURL.Host)
	}

	path := parsedURL.EscapedPath()
	if path == "" {
		path = "/"
	}
	if parsedURL.RawQuery != "" {
		path = path + "?" + parsedURL.RawQuery
	}
	return baseURL, path
}

// parseHeaders parses "Name: value" pairs.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (want Name: value)", h)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}

// parsePairs parses key=value pairs.
func parsePairs(raw []string, what string) (url.Values, error) {
	out := make(url.Values, len(raw))
	for _, p := range raw {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid %s %q (want key=value)", what, p)
		}
		out.Add(key, value)
	}
	return out, nil
}
