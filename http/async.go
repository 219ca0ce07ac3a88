package http

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// async binds the handle at call time and runs the request in the
// background, so calls are issued in caller order and only their
// completions interleave.
func (c *Client) async(ctx context.Context, method, path string, opts []RequestOption) *Future[Result] {
	k, err := c.prepare(ModeAsync)
	if err != nil {
		return failedFuture[Result](err)
	}
	return goFuture(func() (Result, error) {
		return k.do(ctx, method, path, opts)
	})
}

// AsyncGet issues a GET request on the async handle.
func (c *Client) AsyncGet(ctx context.Context, path string, opts ...RequestOption) *Future[Result] {
	return c.async(ctx, http.MethodGet, path, opts)
}

// AsyncPost issues a POST request on the async handle.
func (c *Client) AsyncPost(ctx context.Context, path string, opts ...RequestOption) *Future[Result] {
	return c.async(ctx, http.MethodPost, path, opts)
}

// AsyncPut issues a PUT request on the async handle.
func (c *Client) AsyncPut(ctx context.Context, path string, opts ...RequestOption) *Future[Result] {
	return c.async(ctx, http.MethodPut, path, opts)
}

// AsyncPatch issues a PATCH request on the async handle.
func (c *Client) AsyncPatch(ctx context.Context, path string, opts ...RequestOption) *Future[Result] {
	return c.async(ctx, http.MethodPatch, path, opts)
}

// AsyncDelete issues a DELETE request on the async handle.
func (c *Client) AsyncDelete(ctx context.Context, path string, opts ...RequestOption) *Future[Result] {
	return c.async(ctx, http.MethodDelete, path, opts)
}

// AsyncHead issues a HEAD request on the async handle.
func (c *Client) AsyncHead(ctx context.Context, path string, opts ...RequestOption) *Future[Result] {
	return c.async(ctx, http.MethodHead, path, opts)
}

// AsyncDo issues a request with any method on the async handle.
func (c *Client) AsyncDo(ctx context.Context, method, path string, opts ...RequestOption) *Future[Result] {
	return c.async(ctx, method, path, opts)
}

// Outcome is the result of one path in a GetMany call.
type Outcome struct {
	Path   string
	Result Result
	Err    error
}

// GetMany fetches paths concurrently on the async handle, at most
// MaxConnections at a time. Outcomes are returned in path order and one
// failure does not cancel the others.
func (c *Client) GetMany(ctx context.Context, paths []string, opts ...RequestOption) []Outcome {
	out := make([]Outcome, len(paths))
	k, err := c.prepare(ModeAsync)
	if err != nil {
		for i, p := range paths {
			out[i] = Outcome{Path: p, Err: err}
		}
		return out
	}

	limit := c.asyncLimit()
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			res, err := k.do(ctx, http.MethodGet, p, opts)
			out[i] = Outcome{Path: p, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (c *Client) asyncLimit() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opts.AsyncConfig != nil {
		return c.opts.AsyncConfig.MaxConnections
	}
	return c.opts.Factory.Config(ModeAsync.profile()).MaxConnections
}
