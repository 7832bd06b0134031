// Package metrics records tool call outcomes and upstream request latency for Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lunchflow"

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	toolCalls        *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
}

// New creates the collectors and registers them with registry
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of MCP tool calls by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of requests to the Lunch Flow API by operation and status",
			},
			[]string{"operation", "status"},
		),
		upstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Latency of requests to the Lunch Flow API",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	for _, c := range []prometheus.Collector{m.toolCalls, m.upstreamRequests, m.upstreamLatency} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordToolCall counts a completed tool call
func (m *Metrics) RecordToolCall(tool, outcome string) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// RecordUpstream records one HTTP exchange. A zero status means no response was received.
func (m *Metrics) RecordUpstream(operation string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	m.upstreamRequests.WithLabelValues(operation, label).Inc()
	m.upstreamLatency.WithLabelValues(operation).Observe(duration.Seconds())
}
