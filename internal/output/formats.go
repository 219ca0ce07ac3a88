package output

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	lazyhttp "github.com/wesleyorama2/lazyapi/http"
	"github.com/wesleyorama2/lazyapi/metrics"
)

// OutputFormat represents the format of the output
type OutputFormat string

const (
	// FormatText is human-readable, optionally colored text
	FormatText OutputFormat = "text"
	// FormatJSON is one JSON document per item
	FormatJSON OutputFormat = "json"
	// FormatYAML is one YAML document per item
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// FormatProvider renders requests, responses and latency stats.
type FormatProvider interface {
	FormatRequest(req *lazyhttp.Request, baseURL string) string
	FormatResponse(resp *lazyhttp.Response) string
	FormatValue(v interface{}) string
	FormatStats(s metrics.Snapshot) string
}

// GetFormatter returns the provider for format.
func GetFormatter(format OutputFormat, verbose, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}

// RequestData is the serializable form of a request
type RequestData struct {
	Method      string            `json:"method" yaml:"method"`
	URL         string            `json:"url" yaml:"url"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	QueryParams map[string]string `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
	Body        interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
}

// TimingData contains per-phase timings in milliseconds
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs" yaml:"dnsLookupMs"`
	TCPConnection   int64 `json:"tcpConnectionMs" yaml:"tcpConnectionMs"`
	TLSHandshake    int64 `json:"tlsHandshakeMs" yaml:"tlsHandshakeMs"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs" yaml:"timeToFirstByteMs"`
	ContentTransfer int64 `json:"contentTransferMs" yaml:"contentTransferMs"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData is the serializable form of a response envelope
type ResponseData struct {
	StatusCode   int               `json:"statusCode" yaml:"statusCode"`
	Status       string            `json:"status" yaml:"status"`
	Method       string            `json:"method" yaml:"method"`
	URL          string            `json:"url" yaml:"url"`
	Mode         string            `json:"mode" yaml:"mode"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body         interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	ResponseTime int64             `json:"responseTimeMs" yaml:"responseTimeMs"`
	Timing       *TimingData       `json:"timing,omitempty" yaml:"timing,omitempty"`
	Timestamp    string            `json:"timestamp" yaml:"timestamp"`
}

// StatsData is the serializable form of a latency snapshot
type StatsData struct {
	Mode     string  `json:"mode" yaml:"mode"`
	Requests int64   `json:"requests" yaml:"requests"`
	Errors   int64   `json:"errors" yaml:"errors"`
	MinMs    float64 `json:"minMs" yaml:"minMs"`
	MeanMs   float64 `json:"meanMs" yaml:"meanMs"`
	P50Ms    float64 `json:"p50Ms" yaml:"p50Ms"`
	P95Ms    float64 `json:"p95Ms" yaml:"p95Ms"`
	P99Ms    float64 `json:"p99Ms" yaml:"p99Ms"`
	MaxMs    float64 `json:"maxMs" yaml:"maxMs"`
}

func fullURL(req *lazyhttp.Request, baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	if req.Path != "" {
		u += "/" + strings.TrimLeft(req.Path, "/")
	}
	if len(req.QueryParams) > 0 {
		u += "?" + req.QueryParams.Encode()
	}
	return u
}

func firstValues(v url.Values) map[string]string {
	if len(v) == 0 {
		return nil
	}
	out := make(map[string]string, len(v))
	for key, values := range v {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}

// NewRequestData converts a request for serialization.
func NewRequestData(req *lazyhttp.Request, baseURL string) RequestData {
	body := req.Body
	if req.FormData != nil {
		body = req.FormData
	}
	return RequestData{
		Method:      req.Method,
		URL:         fullURL(req, baseURL),
		Headers:     req.Headers,
		QueryParams: firstValues(req.QueryParams),
		Body:        body,
	}
}

// NewResponseData converts an envelope for serialization. Timings and
// headers are only included when verbose is set.
func NewResponseData(resp *lazyhttp.Response, verbose bool) ResponseData {
	data := ResponseData{
		StatusCode:   resp.StatusCode(),
		Status:       resp.Status(),
		Method:       resp.Method(),
		URL:          resp.URL(),
		Mode:         string(resp.Mode()),
		ResponseTime: resp.Duration().Milliseconds(),
		Timestamp:    resp.Timestamp(),
	}
	if v := resp.Data(); v != nil {
		data.Body = v
	} else if text := resp.Text(); text != "" {
		data.Body = text
	}

	if verbose {
		data.Headers = make(map[string]string, len(resp.Header()))
		for key, values := range resp.Header() {
			if len(values) > 0 {
				data.Headers[key] = values[0]
			}
		}
		if t, ok := resp.Timing(); ok {
			data.Timing = &TimingData{
				DNSLookup:       t.DNSLookupTime.Milliseconds(),
				TCPConnection:   t.TCPConnectTime.Milliseconds(),
				TLSHandshake:    t.TLSHandshakeTime.Milliseconds(),
				TimeToFirstByte: t.TimeToFirstByte.Milliseconds(),
				ContentTransfer: t.ContentTransferTime.Milliseconds(),
				Total:           t.TotalTime.Milliseconds(),
			}
		}
	}
	return data
}

// NewStatsData converts a snapshot for serialization.
func NewStatsData(s metrics.Snapshot) StatsData {
	ms := func(d time.Duration) float64 {
		return float64(d.Microseconds()) / 1000
	}
	return StatsData{
		Mode:     s.Mode,
		Requests: s.Requests,
		Errors:   s.Errors,
		MinMs:    ms(s.Min),
		MeanMs:   ms(s.Mean),
		P50Ms:    ms(s.P50),
		P95Ms:    ms(s.P95),
		P99Ms:    ms(s.P99),
		MaxMs:    ms(s.Max),
	}
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

func (f *JSONFormatter) marshal(v interface{}) string {
	var out []byte
	var err error
	if f.Pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, "failed to marshal output: "+err.Error())
	}
	return string(out)
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(req *lazyhttp.Request, baseURL string) string {
	return f.marshal(NewRequestData(req, baseURL))
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *lazyhttp.Response) string {
	return f.marshal(NewResponseData(resp, f.Verbose))
}

// FormatValue formats an arbitrary value as JSON
func (f *JSONFormatter) FormatValue(v interface{}) string {
	return f.marshal(v)
}

// FormatStats formats a latency snapshot as JSON
func (f *JSONFormatter) FormatStats(s metrics.Snapshot) string {
	return f.marshal(NewStatsData(s))
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose bool
}

func (f *YAMLFormatter) marshal(v interface{}) string {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: failed to marshal output: %s\n", err)
	}
	return string(out)
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(req *lazyhttp.Request, baseURL string) string {
	return f.marshal(NewRequestData(req, baseURL))
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *lazyhttp.Response) string {
	return f.marshal(NewResponseData(resp, f.Verbose))
}

// FormatValue formats an arbitrary value as YAML
func (f *YAMLFormatter) FormatValue(v interface{}) string {
	return f.marshal(v)
}

// FormatStats formats a latency snapshot as YAML
func (f *YAMLFormatter) FormatStats(s metrics.Snapshot) string {
	return f.marshal(NewStatsData(s))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
