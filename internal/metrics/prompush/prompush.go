// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// Short-lived batch commands cannot be scraped, so collected metrics are
// pushed to a Pushgateway on Flush instead of being exposed over HTTP. All
// Prometheus-specific dependencies stay in this package; the rest of the
// project depends only on metrics.Backend.
package prompush

import (
	"fmt"

	"lexkit/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // lexkit_step_total
	stepDuration *prometheus.SummaryVec // lexkit_step_duration_seconds
	keysCounter  *prometheus.CounterVec // lexkit_keys_total
}

// NewBackend constructs a Pushgateway backend. jobName becomes the
// Pushgateway "job" grouping key; when empty, "lexkit" is used.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "lexkit"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexkit_step_total",
			Help: "Total step executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "lexkit_step_duration_seconds",
			Help:       "Duration of run steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	keysCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexkit_keys_total",
			Help: "Key-level counts (rows, distinct, duplicates, malformed, loaded).",
		},
		[]string{"kind"},
	)

	reg.MustRegister(stepCounter, stepDuration, keysCounter)

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		reg:          reg,
		stepCounter:  stepCounter,
		stepDuration: stepDuration,
		keysCounter:  keysCounter,
	}, nil
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "lexkit_step_total":
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
	case "lexkit_keys_total":
		b.keysCounter.WithLabelValues(labels["kind"]).Add(delta)
	}
	// Unknown counters are dropped; the registry holds a fixed metric set.
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name == "lexkit_step_duration_seconds" {
		b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
	}
}

// Flush pushes the registry contents to the Pushgateway, replacing the
// metric group for this job.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
