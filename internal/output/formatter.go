package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	lazyhttp "github.com/wesleyorama2/lazyapi/http"
	"github.com/wesleyorama2/lazyapi/metrics"
)

// Formatter formats requests and responses as human-readable text
type Formatter struct {
	Verbose bool
	NoColor bool
	scheme  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	scheme := DefaultColorScheme()
	if noColor {
		scheme = NoColorScheme()
	}
	return &Formatter{Verbose: verbose, NoColor: noColor, scheme: scheme}
}

// FormatRequest formats a request for display
func (f *Formatter) FormatRequest(req *lazyhttp.Request, baseURL string) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "▶ REQUEST: %s %s\n",
		f.scheme.Method.Sprint(req.Method),
		f.scheme.URL.Sprint(fullURL(req, baseURL)))

	if f.Verbose || len(req.Headers) > 0 {
		buf.WriteString("  Headers:\n")
		for _, key := range sortedKeys(req.Headers) {
			fmt.Fprintf(&buf, "    %s: %s\n", f.scheme.HeaderKey.Sprint(key), req.Headers[key])
		}
	}

	switch {
	case req.FormData != nil:
		buf.WriteString("  Form:\n")
		for _, key := range sortedKeys(req.FormData) {
			fmt.Fprintf(&buf, "    %s=%s\n", key, req.FormData[key])
		}
	case req.Body != nil:
		buf.WriteString("  Body: ")
		switch body := req.Body.(type) {
		case string:
			buf.WriteString(formatJSONString(body))
		case []byte:
			buf.WriteString(formatJSONString(string(body)))
		default:
			jsonBody, err := json.Marshal(body)
			if err != nil {
				fmt.Fprintf(&buf, "%v", body)
			} else {
				buf.WriteString(formatJSONString(string(jsonBody)))
			}
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats a response envelope for display
func (f *Formatter) FormatResponse(resp *lazyhttp.Response) string {
	var buf strings.Builder

	status := resp.Status()
	if status == "" {
		status = fmt.Sprintf("%d", resp.StatusCode())
	}
	fmt.Fprintf(&buf, "◀ RESPONSE: %s (%dms) [%s]\n",
		f.scheme.Status(resp.StatusCode()).Sprint(status),
		resp.Duration().Milliseconds(),
		resp.Mode())

	if f.Verbose {
		if t, ok := resp.Timing(); ok {
			buf.WriteString("  Timing:\n")
			fmt.Fprintf(&buf, "    DNS Lookup:         %dms\n", t.DNSLookupTime.Milliseconds())
			fmt.Fprintf(&buf, "    TCP Connection:     %dms\n", t.TCPConnectTime.Milliseconds())
			fmt.Fprintf(&buf, "    TLS Handshake:      %dms\n", t.TLSHandshakeTime.Milliseconds())
			fmt.Fprintf(&buf, "    Time to First Byte: %dms\n", t.TimeToFirstByte.Milliseconds())
			fmt.Fprintf(&buf, "    Content Transfer:   %dms\n", t.ContentTransferTime.Milliseconds())
			fmt.Fprintf(&buf, "    Total:              %dms\n", t.TotalTime.Milliseconds())
		}

		buf.WriteString("  Headers:\n")
		header := resp.Header()
		for _, key := range sortedKeys(header) {
			for _, value := range header[key] {
				fmt.Fprintf(&buf, "    %s: %s\n", f.scheme.HeaderKey.Sprint(key), value)
			}
		}
		fmt.Fprintf(&buf, "  %s %s\n", f.scheme.Label.Sprint("Timestamp:"), resp.Timestamp())
	}

	if body := resp.Text(); body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatValue renders v as indented JSON, or as-is for strings.
func (f *Formatter) FormatValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}

// FormatStats renders a latency summary.
func (f *Formatter) FormatStats(s metrics.Snapshot) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s %s: %d requests, %d errors\n",
		f.scheme.Highlight.Sprint("Latency"), s.Mode, s.Requests, s.Errors)

	rows := []struct {
		label string
		d     time.Duration
	}{
		{"min", s.Min}, {"mean", s.Mean}, {"p50", s.P50},
		{"p95", s.P95}, {"p99", s.P99}, {"max", s.Max},
	}
	for _, r := range rows {
		fmt.Fprintf(&buf, "  %-5s %s\n", f.scheme.Label.Sprint(r.label), r.d.Round(time.Microsecond))
	}
	return buf.String()
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, []byte(s), "  ", "  "); err != nil {
		return s
	}
	return prettyJSON.String()
}
