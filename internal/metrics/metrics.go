// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from lexicon runs.
//
// The package exposes a narrow Backend interface (counters plus duration
// histograms) behind a global, pluggable backend that defaults to a no-op
// implementation, so instrumentation is always safe to call even when no
// real backend is configured. Concrete systems (Prometheus Pushgateway,
// Datadog) live in subpackages and are selected at startup; the rest of the
// codebase depends only on this package.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures one stage of a run (extract, load, ...) as latency
// plus a success/failure counter.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter("lexkit_step_total", 1, lbls)
	backend.ObserveHistogram("lexkit_step_duration_seconds", d.Seconds(), lbls)
}

// RecordKeys increments a key-level counter for the given job. Typical kinds
// mirror the extraction stats: "rows", "distinct", "duplicates", "malformed",
// "loaded".
func RecordKeys(job, kind string, n int) {
	if n == 0 {
		return
	}
	backend.IncCounter("lexkit_keys_total", float64(n), Labels{
		"job":  job,
		"kind": kind,
	})
}
