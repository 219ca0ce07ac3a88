package http

import (
	"context"
	"encoding/json"
)

// DefaultDataKey is the key GetData reads when none is given.
const DefaultDataKey = "data"

// PingOptions bounds the status a Ping accepts.
type PingOptions struct {
	MinStatus int
	MaxStatus int
}

// Healthy applies the ping rule to a status code:
//   - MinStatus and MaxStatus set: MinStatus <= code < MaxStatus
//   - only MinStatus set: code > MinStatus
//   - otherwise: code < MaxStatus, with MaxStatus defaulting to 300
func (o PingOptions) Healthy(code int) bool {
	switch {
	case o.MinStatus != 0 && o.MaxStatus != 0:
		return code >= o.MinStatus && code < o.MaxStatus
	case o.MinStatus != 0:
		return code > o.MinStatus
	default:
		upper := o.MaxStatus
		if upper == 0 {
			upper = 300
		}
		return code < upper
	}
}

// Ping issues a GET and reports whether the status passes po.
func (c *Client) Ping(ctx context.Context, path string, po PingOptions, opts ...RequestOption) (bool, error) {
	res, err := c.Get(ctx, path, opts...)
	if err != nil {
		return false, err
	}
	return po.Healthy(res.StatusCode()), nil
}

// AsyncPing is Ping on the async handle.
func (c *Client) AsyncPing(ctx context.Context, path string, po PingOptions, opts ...RequestOption) *Future[bool] {
	f := c.AsyncGet(ctx, path, opts...)
	return goFuture(func() (bool, error) {
		res, err := f.Wait()
		if err != nil {
			return false, err
		}
		return po.Healthy(res.StatusCode()), nil
	})
}

// GetData issues a GET and returns body[key]. An empty key means "data".
// A missing key yields nil; a body that is not a JSON object yields a
// *ParseError.
func (c *Client) GetData(ctx context.Context, path, key string, opts ...RequestOption) (interface{}, error) {
	res, err := c.Get(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	return extractKey(res.Body(), key)
}

// AsyncGetData is GetData on the async handle.
func (c *Client) AsyncGetData(ctx context.Context, path, key string, opts ...RequestOption) *Future[interface{}] {
	f := c.AsyncGet(ctx, path, opts...)
	return goFuture(func() (interface{}, error) {
		res, err := f.Wait()
		if err != nil {
			return nil, err
		}
		return extractKey(res.Body(), key)
	})
}

// GetInto decodes body[key] into v. It reports false, with no error, when
// the value is missing or empty.
func (c *Client) GetInto(ctx context.Context, path, key string, v interface{}, opts ...RequestOption) (bool, error) {
	data, err := c.GetData(ctx, path, key, opts...)
	if err != nil {
		return false, err
	}
	if isEmpty(data) {
		return false, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, newParseError(raw, "", err)
	}
	return true, nil
}

func extractKey(body []byte, key string) (interface{}, error) {
	if key == "" {
		key = DefaultDataKey
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, newParseError(body, "", err)
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, newParseError(body, "body is not a JSON object", nil)
	}
	return obj[key], nil
}

func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	case string:
		return t == ""
	}
	return false
}
