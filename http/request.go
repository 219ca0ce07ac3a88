package http

import (
	"context"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// Request holds the per-call settings applied on top of a handle.
// Build one with NewRequest and RequestOption values.
type Request struct {
	Method      string
	Path        string
	QueryParams url.Values
	Headers     map[string]string
	Body        interface{}
	FormData    map[string]string

	// Timeout bounds this call only; zero keeps the handle timeout
	Timeout time.Duration
}

// RequestOption configures a single call.
type RequestOption func(*Request)

// NewRequest creates a request for method and path with opts applied.
//
// Example:
//
//	req := http.NewRequest("GET", "/users",
//	    http.WithQuery("limit", "10"),
//	    http.WithHeader("Accept", "application/json"))
func NewRequest(method, path string, opts ...RequestOption) *Request {
	r := &Request{
		Method:      method,
		Path:        path,
		QueryParams: make(url.Values),
		Headers:     make(map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// WithQuery adds a query parameter. Repeating a key adds another value.
func WithQuery(key, value string) RequestOption {
	return func(r *Request) {
		r.QueryParams.Add(key, value)
	}
}

// WithQueryValues adds every value in params.
func WithQueryValues(params url.Values) RequestOption {
	return func(r *Request) {
		for key, values := range params {
			for _, v := range values {
				r.QueryParams.Add(key, v)
			}
		}
	}
}

// WithHeader sets a header for this call, overriding the handle's value.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		r.Headers[key] = value
	}
}

// WithHeaders sets several headers for this call.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *Request) {
		for key, value := range headers {
			r.Headers[key] = value
		}
	}
}

// WithBody sets the request body. Strings, byte slices and readers are
// sent as-is; anything else is marshaled as JSON.
func WithBody(body interface{}) RequestOption {
	return func(r *Request) {
		r.Body = body
	}
}

// WithForm sends data as application/x-www-form-urlencoded.
func WithForm(data map[string]string) RequestOption {
	return func(r *Request) {
		if r.FormData == nil {
			r.FormData = make(map[string]string, len(data))
		}
		for key, value := range data {
			r.FormData[key] = value
		}
	}
}

// WithTimeout bounds this call to d.
func WithTimeout(d time.Duration) RequestOption {
	return func(r *Request) {
		r.Timeout = d
	}
}

// context derives the call context. The returned cancel func is never nil.
func (r *Request) context(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if r.Timeout > 0 {
		return context.WithTimeout(parent, r.Timeout)
	}
	return parent, func() {}
}

// apply copies the request settings onto a resty request.
func (r *Request) apply(rr *resty.Request) *resty.Request {
	if len(r.QueryParams) > 0 {
		rr.SetQueryParamsFromValues(r.QueryParams)
	}
	if len(r.Headers) > 0 {
		rr.SetHeaders(r.Headers)
	}
	if r.FormData != nil {
		rr.SetFormData(r.FormData)
	} else if r.Body != nil {
		rr.SetBody(r.Body)
	}
	return rr
}
