// Package metrics records per-mode request latencies for a client.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram bounds in microseconds: 1µs to 1 hour, 3 significant figures.
const (
	histogramMin     = 1
	histogramMax     = 3_600_000_000
	histogramSigFigs = 3
)

// Recorder aggregates request latencies into one HDR histogram per mode
// ("sync", "async").
//
// Recorder is safe for concurrent use. Counters are atomic; histograms are
// guarded by a mutex because RecordValue is not thread-safe.
type Recorder struct {
	mu     sync.Mutex
	series map[string]*series
}

type series struct {
	hist     *hdrhistogram.Histogram
	requests atomic.Int64
	errors   atomic.Int64
}

// Snapshot is a point-in-time view of one mode's latencies.
type Snapshot struct {
	Mode     string        `json:"mode" yaml:"mode"`
	Requests int64         `json:"requests" yaml:"requests"`
	Errors   int64         `json:"errors" yaml:"errors"`
	Min      time.Duration `json:"min" yaml:"min"`
	Mean     time.Duration `json:"mean" yaml:"mean"`
	P50      time.Duration `json:"p50" yaml:"p50"`
	P95      time.Duration `json:"p95" yaml:"p95"`
	P99      time.Duration `json:"p99" yaml:"p99"`
	Max      time.Duration `json:"max" yaml:"max"`
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{series: make(map[string]*series)}
}

// Record adds one completed request. status is 0 when the transport failed;
// such requests and statuses >= 400 count as errors.
func (r *Recorder) Record(mode string, status int, d time.Duration) {
	if r == nil {
		return
	}
	micros := d.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.series[mode]
	if !ok {
		s = &series{hist: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)}
		r.series[mode] = s
	}
	s.requests.Add(1)
	if status == 0 || status >= 400 {
		s.errors.Add(1)
	}
	_ = s.hist.RecordValue(micros)
}

// Snapshot returns the aggregates for mode. An unknown mode yields a
// zero Snapshot.
func (r *Recorder) Snapshot(mode string) Snapshot {
	out := Snapshot{Mode: mode}
	if r == nil {
		return out
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.series[mode]
	if !ok {
		return out
	}
	out.Requests = s.requests.Load()
	out.Errors = s.errors.Load()
	out.Min = time.Duration(s.hist.Min()) * time.Microsecond
	out.Mean = time.Duration(s.hist.Mean()) * time.Microsecond
	out.P50 = time.Duration(s.hist.ValueAtQuantile(50)) * time.Microsecond
	out.P95 = time.Duration(s.hist.ValueAtQuantile(95)) * time.Microsecond
	out.P99 = time.Duration(s.hist.ValueAtQuantile(99)) * time.Microsecond
	out.Max = time.Duration(s.hist.Max()) * time.Microsecond
	return out
}

// Modes lists the modes that have recorded at least one request.
func (r *Recorder) Modes() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	modes := make([]string, 0, len(r.series))
	for m := range r.series {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.series = make(map[string]*series)
	r.mu.Unlock()
}
