package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

// fetch returns the envelope for a server answering status and body.
func fetch(t *testing.T, status int, body string) *Response {
	t.Helper()
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
	client := NewClient(Options{BaseURL: srv.URL})
	res, err := client.Get(context.Background(), "/")
	require.NoError(t, err)
	resp, ok := res.(*Response)
	require.True(t, ok)
	return resp
}
