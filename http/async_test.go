package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/lazyapi/config"
)

func TestClient_AsyncGet(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"path":%q}`, r.URL.Path)
	})
	client := NewClient(Options{BaseURL: srv.URL})

	f := client.AsyncGet(context.Background(), "/users")
	res, err := f.Wait()
	require.NoError(t, err)

	resp := res.(*Response)
	assert.True(t, resp.IsAsync())
	assert.False(t, resp.IsSync())
	assert.Equal(t, ModeAsync, resp.Mode())
	assert.JSONEq(t, `{"path":"/users"}`, resp.Text())

	select {
	case <-f.Done():
	default:
		t.Error("Expected Done to be closed after Wait")
	}
}

func TestClient_AsyncVerbs(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Method))
	})
	client := NewClient(Options{BaseURL: srv.URL})
	ctx := context.Background()

	futures := map[string]*Future[Result]{
		"GET":    client.AsyncGet(ctx, "/"),
		"POST":   client.AsyncPost(ctx, "/"),
		"PUT":    client.AsyncPut(ctx, "/"),
		"PATCH":  client.AsyncPatch(ctx, "/"),
		"DELETE": client.AsyncDelete(ctx, "/"),
		"HEAD":   client.AsyncHead(ctx, "/"),
	}
	for method, f := range futures {
		res, err := f.Wait()
		require.NoError(t, err, method)
		assert.Equal(t, method, res.(*Response).Method())
		if method != "HEAD" {
			assert.Equal(t, method, res.String())
		}
	}
}

func TestClient_AsyncIsolation(t *testing.T) {
	factory := NewFactory(FactoryOptions{})
	client := NewClient(Options{BaseURL: "http://example.invalid", Factory: factory})

	a1, err := client.AsyncHandle()
	require.NoError(t, err)
	assert.Equal(t, int64(1), factory.HandlesCreated(), "async use does not build the sync handle")

	s1, err := client.SyncHandle()
	require.NoError(t, err)
	assert.NotSame(t, a1, s1)

	a2, err := client.AsyncHandle()
	require.NoError(t, err)
	assert.Same(t, a1, a2)
}

func TestClient_AsyncUsesAsyncConfig(t *testing.T) {
	asyncCfg := config.Defaults(config.ProfileAsync)
	asyncCfg.Timeout = 7 * time.Second
	client := NewClient(Options{AsyncConfig: &asyncCfg})

	a, err := client.AsyncHandle()
	require.NoError(t, err)
	s, err := client.SyncHandle()
	require.NoError(t, err)

	assert.Equal(t, 7*time.Second, a.GetClient().Timeout)
	assert.Equal(t, config.DefaultTimeout, s.GetClient().Timeout)
}

func TestClient_AsyncConcurrent(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		inFlight.Add(-1)
	})
	client := NewClient(Options{BaseURL: srv.URL})
	ctx := context.Background()

	var futures []*Future[Result]
	for i := 0; i < 5; i++ {
		futures = append(futures, client.AsyncGet(ctx, "/"))
	}
	for _, f := range futures {
		_, err := f.Wait()
		require.NoError(t, err)
	}
	assert.Greater(t, peak.Load(), int32(1), "async calls overlap")
}

func TestClient_AsyncHandleError(t *testing.T) {
	client := NewClient(Options{Transport: TransportOptions{Proxy: "::bad"}})
	res, err := client.AsyncGet(context.Background(), "/").Wait()
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestFuture_Await(t *testing.T) {
	release := make(chan struct{})
	f := goFuture(func() (int, error) {
		<-release
		return 42, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestClient_GetMany(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(r.URL.Path))
	})
	dead := newServer(t, func(w http.ResponseWriter, r *http.Request) {})
	deadURL := dead.URL
	dead.Close()

	asyncCfg := config.Defaults(config.ProfileAsync)
	asyncCfg.MaxConnections = 2
	client := NewClient(Options{BaseURL: srv.URL, AsyncConfig: &asyncCfg})

	paths := []string{"/a", "/missing", deadURL + "/x", "/b"}
	out := client.GetMany(context.Background(), paths)
	require.Len(t, out, 4)

	assert.NoError(t, out[0].Err)
	assert.Equal(t, "/a", out[0].Result.String())
	assert.NoError(t, out[1].Err)
	assert.Equal(t, http.StatusNotFound, out[1].Result.StatusCode())
	assert.Error(t, out[2].Err, "one failure does not cancel the rest")
	assert.NoError(t, out[3].Err)
	assert.Equal(t, "/b", out[3].Result.String())

	for i, o := range out {
		assert.Equal(t, paths[i], o.Path)
	}
}
