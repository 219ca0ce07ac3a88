package http

import (
	"crypto/tls"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/lazyapi/config"
)

func TestFactory_DefaultHandles(t *testing.T) {
	f := NewFactory(FactoryOptions{})

	h1, err := f.Handle()
	require.NoError(t, err)
	h2, err := f.Handle()
	require.NoError(t, err)
	assert.Same(t, h1, h2)

	a, err := f.AsyncHandle()
	require.NoError(t, err)
	assert.NotSame(t, h1, a)
	assert.Equal(t, int64(2), f.HandlesCreated())

	f.Reset()
	h3, err := f.Handle()
	require.NoError(t, err)
	assert.NotSame(t, h1, h3)
	assert.Equal(t, int64(3), f.HandlesCreated())
}

func TestFactory_NewHandleAppliesConfig(t *testing.T) {
	cfg := config.ClientConfig{
		Timeout:                 2 * time.Second,
		ConnectTimeout:          time.Second,
		MaxKeepAliveConnections: 3,
		MaxConnections:          9,
		Headers:                 map[string]string{"Accept": "text/plain"},
	}
	f := NewFactory(FactoryOptions{})

	h, err := f.NewHandle(config.ProfileSync, "http://example.invalid/", &cfg, nil,
		TransportOptions{TLSConfig: &tls.Config{ServerName: "example"}})
	require.NoError(t, err)

	assert.Equal(t, "http://example.invalid", h.BaseURL)
	assert.Equal(t, 2*time.Second, h.GetClient().Timeout)
	assert.Equal(t, "text/plain", h.Header.Get("Accept"))

	tr, ok := h.GetClient().Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 3, tr.MaxIdleConns)
	assert.Equal(t, 3, tr.MaxIdleConnsPerHost)
	assert.Equal(t, 9, tr.MaxConnsPerHost)
	assert.Equal(t, time.Second, tr.TLSHandshakeTimeout)
	assert.Equal(t, "example", tr.TLSClientConfig.ServerName)
}

func TestFactory_HeadersReplaceConfig(t *testing.T) {
	f := NewFactory(FactoryOptions{})
	h, err := f.NewHandle(config.ProfileSync, "", nil, map[string]string{"X-Key": "1"}, TransportOptions{})
	require.NoError(t, err)

	assert.Equal(t, "1", h.Header.Get("X-Key"))
	assert.Empty(t, h.Header.Get("Accept"))
	assert.Empty(t, h.Header.Get("Content-Type"))
}

func TestFactory_FromSource(t *testing.T) {
	f, err := NewFactoryFromSource(config.MapSource{
		"HTTPX_TIMEOUT":       "4",
		"HTTPX_ASYNC_TIMEOUT": "6",
	})
	require.NoError(t, err)
	assert.Equal(t, 4*time.Second, f.Config(config.ProfileSync).Timeout)
	assert.Equal(t, 6*time.Second, f.Config(config.ProfileAsync).Timeout)

	_, err = NewFactoryFromSource(config.MapSource{"HTTPX_ASYNC_TIMEOUT": "never"})
	assert.Error(t, err)
}

func TestFactory_ConfigIsCopied(t *testing.T) {
	cfg := config.Defaults(config.ProfileSync)
	f := NewFactory(FactoryOptions{SyncConfig: &cfg})
	cfg.Headers["X-Late"] = "1"

	assert.NotContains(t, f.Config(config.ProfileSync).Headers, "X-Late")
}

func TestFactory_UnknownProfile(t *testing.T) {
	f := NewFactory(FactoryOptions{})
	_, err := f.NewHandle(config.Profile("batch"), "", nil, nil, TransportOptions{})
	assert.Error(t, err)
}

func TestFactory_ResolvesFromSource(t *testing.T) {
	f := NewFactory(FactoryOptions{Source: config.MapSource{"HTTPX_ASYNC_KEEPALIVE": "4"}})
	assert.NoError(t, f.Err(config.ProfileAsync))
	assert.Equal(t, 4, f.Config(config.ProfileAsync).MaxKeepAliveConnections)
	assert.Equal(t, config.DefaultMaxKeepAliveConnections, f.Config(config.ProfileSync).MaxKeepAliveConnections)

	bad := NewFactory(FactoryOptions{Source: config.MapSource{"HTTPX_KEEPALIVE": "lots"}})
	assert.Error(t, bad.Err(config.ProfileSync))
	_, err := bad.Handle()
	assert.Error(t, err)
	_, err = bad.AsyncHandle()
	assert.NoError(t, err)
}

func TestFactory_ZeroKeepAliveDisablesPooling(t *testing.T) {
	f := NewFactory(FactoryOptions{Source: config.MapSource{}})

	cfg := config.Defaults(config.ProfileSync)
	cfg.MaxKeepAliveConnections = 0
	h, err := f.NewHandle(config.ProfileSync, "", &cfg, nil, TransportOptions{})
	require.NoError(t, err)
	tr := h.GetClient().Transport.(*http.Transport)
	assert.True(t, tr.DisableKeepAlives)

	h, err = f.Handle()
	require.NoError(t, err)
	tr = h.GetClient().Transport.(*http.Transport)
	assert.False(t, tr.DisableKeepAlives)
}
