package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/itchyny/gojq"
	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/lazyapi/pkg/jsonpath"
	"github.com/wesleyorama2/lazyapi/pkg/jsonschema"
)

// TimestampFormat is the layout of Response.Timestamp.
const TimestampFormat = "2006-01-02T15:04:05Z"

// TolerantCacheTTL is how long Data reuses its last parse.
var TolerantCacheTTL = 10 * time.Second

// now is swapped in tests.
var now = time.Now

// TimingInfo stores per-phase timings for a traced request.
type TimingInfo struct {
	// DNSLookupTime is the time spent looking up the DNS address
	DNSLookupTime time.Duration

	// TCPConnectTime is the time spent establishing a TCP connection
	TCPConnectTime time.Duration

	// TLSHandshakeTime is the time spent performing the TLS handshake (for HTTPS)
	TLSHandshakeTime time.Duration

	// TimeToFirstByte is the time from connection established to the first byte
	TimeToFirstByte time.Duration

	// ContentTransferTime is the time spent reading the response body
	ContentTransferTime time.Duration

	// TotalTime is the total time from request start to completion
	TotalTime time.Duration

	// ConnReused reports whether an idle connection was reused
	ConnReused bool
}

// Response wraps a completed transport response with its mode, method and
// creation timestamp.
type Response struct {
	raw       *resty.Response
	mode      Mode
	method    string
	timestamp string

	memoMu    sync.Mutex
	memoAt    time.Time
	memoValue interface{}
	memoSet   bool
}

// NewResponse wraps raw.
func NewResponse(raw *resty.Response, mode Mode, method string) *Response {
	return &Response{
		raw:       raw,
		mode:      mode,
		method:    method,
		timestamp: now().UTC().Format(TimestampFormat),
	}
}

// Raw returns the wrapped transport response.
func (r *Response) Raw() *resty.Response {
	return r.raw
}

// StatusCode is the HTTP status code, or 0 if there is none.
func (r *Response) StatusCode() int {
	if r.raw == nil {
		return 0
	}
	return r.raw.StatusCode()
}

// Status is the status line text, e.g. "200 OK".
func (r *Response) Status() string {
	if r.raw == nil {
		return ""
	}
	return r.raw.Status()
}

// Header returns the response headers.
func (r *Response) Header() http.Header {
	if r.raw == nil {
		return http.Header{}
	}
	return r.raw.Header()
}

// URL is the final request URL.
func (r *Response) URL() string {
	if r.raw == nil || r.raw.Request == nil {
		return ""
	}
	return r.raw.Request.URL
}

// Method is the HTTP method of the request.
func (r *Response) Method() string { return r.method }

// Mode is the execution mode the request was made in.
func (r *Response) Mode() Mode { return r.mode }

// IsAsync reports whether the request went through the async handle.
func (r *Response) IsAsync() bool { return r.mode == ModeAsync }

// IsSync reports whether the request went through the sync handle.
func (r *Response) IsSync() bool { return r.mode != ModeAsync }

// Timestamp is the UTC creation time of the envelope.
func (r *Response) Timestamp() string { return r.timestamp }

// Body returns the raw body bytes.
func (r *Response) Body() []byte {
	if r.raw == nil {
		return nil
	}
	return r.raw.Body()
}

// Bytes is an alias for Body.
func (r *Response) Bytes() []byte { return r.Body() }

// Text returns the body as a string.
func (r *Response) Text() string { return string(r.Body()) }

// String returns the body as a string.
func (r *Response) String() string { return r.Text() }

// Duration is the time the transport took to produce the response.
func (r *Response) Duration() time.Duration {
	if r.raw == nil {
		return 0
	}
	return r.raw.Time()
}

// Timing returns the traced phase timings. The second value is false when
// the handle was not built with EnableTrace.
func (r *Response) Timing() (TimingInfo, bool) {
	if r.raw == nil || r.raw.Request == nil {
		return TimingInfo{}, false
	}
	ti := r.raw.Request.TraceInfo()
	if ti.TotalTime == 0 {
		return TimingInfo{}, false
	}
	return TimingInfo{
		DNSLookupTime:       ti.DNSLookup,
		TCPConnectTime:      ti.TCPConnTime,
		TLSHandshakeTime:    ti.TLSHandshake,
		TimeToFirstByte:     ti.ServerTime,
		ContentTransferTime: ti.ResponseTime,
		TotalTime:           ti.TotalTime,
		ConnReused:          ti.IsConnReused,
	}, true
}

// IsError reports a 4xx or 5xx status.
func (r *Response) IsError() bool { return r.StatusCode() >= 400 }

// IsSuccess reports a status below 300.
func (r *Response) IsSuccess() bool { return r.StatusCode() < 300 }

// IsRedirect reports a 3xx status.
func (r *Response) IsRedirect() bool {
	code := r.StatusCode()
	return code >= 300 && code <= 399
}

// JSON parses the body strictly and returns a *ParseError on failure.
func (r *Response) JSON() (interface{}, error) {
	var v interface{}
	if err := r.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Decode parses the body strictly into v.
func (r *Response) Decode(v interface{}) error {
	body := r.Body()
	if err := json.Unmarshal(body, v); err != nil {
		return newParseError(body, "", err)
	}
	return nil
}

// Data parses the body tolerantly: a body that is not JSON yields nil.
// The parse is reused for TolerantCacheTTL.
func (r *Response) Data() interface{} {
	r.memoMu.Lock()
	defer r.memoMu.Unlock()

	t := now()
	if r.memoSet && t.Sub(r.memoAt) < TolerantCacheTTL {
		return r.memoValue
	}

	var v interface{}
	if err := json.Unmarshal(r.Body(), &v); err != nil {
		v = nil
	}
	r.memoValue, r.memoAt, r.memoSet = v, t, true
	return v
}

// As converts the tolerant parse held by Data into v and reports success
// instead of failing. A body that is not JSON, or is JSON null, gives false.
func (r *Response) As(v interface{}) bool {
	data := r.Data()
	if data == nil {
		return false
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// Path evaluates a gjson or simple JSONPath expression against the body.
func (r *Response) Path(expr string) (gjson.Result, error) {
	return jsonpath.Get(r.Body(), expr)
}

// Query runs a jq program against the body and collects every output.
func (r *Response) Query(program string) ([]interface{}, error) {
	q, err := gojq.Parse(program)
	if err != nil {
		return nil, fmt.Errorf("invalid jq query: %w", err)
	}
	doc, err := r.JSON()
	if err != nil {
		return nil, err
	}

	var out []interface{}
	iter := q.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return out, fmt.Errorf("jq: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ValidateSchema validates the body against a JSON schema document.
func (r *Response) ValidateSchema(schema string) error {
	return jsonschema.Validate(r.Body(), schema)
}

// Base64 returns the body base64-encoded.
func (r *Response) Base64() string {
	return EncodeBase64(r.Text())
}

// GzipBase64 returns the body gzipped then base64-encoded.
func (r *Response) GzipBase64() (string, error) {
	return EncodeGzipBase64(r.Text())
}

// DecodeBase64 treats the body as base64 text and decodes it.
func (r *Response) DecodeBase64() (string, error) {
	return DecodeBase64(string(bytes.TrimSpace(r.Body())))
}

// DecodeGzipBase64 treats the body as gzip+base64 text and decodes it.
func (r *Response) DecodeGzipBase64() (string, error) {
	return DecodeGzipBase64(string(bytes.TrimSpace(r.Body())))
}
