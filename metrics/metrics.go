package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector records dashboard events.
type Collector interface {
	IncSnapshot(doc string, exists bool)
	IncCommand(endpoint, outcome string)
}

const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

type noopCollector struct{}

// Noop returns a collector that discards everything.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) IncSnapshot(string, bool)  {}
func (noopCollector) IncCommand(string, string) {}

// PrometheusCollector exposes the counters via Prometheus.
type PrometheusCollector struct {
	snapshots *prometheus.CounterVec
	commands  *prometheus.CounterVec
}

// NewPrometheusCollector registers the counters with reg, reusing counters
// that are already registered.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	snapshots, err := registerCounter(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smarthome_snapshots_total",
		Help: "Number of document snapshots received per document.",
	}, []string{"doc", "exists"}))
	if err != nil {
		return nil, err
	}

	commands, err := registerCounter(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smarthome_commands_total",
		Help: "Number of commands dispatched to the control server per endpoint and outcome.",
	}, []string{"endpoint", "outcome"}))
	if err != nil {
		return nil, err
	}

	return &PrometheusCollector{snapshots: snapshots, commands: commands}, nil
}

func registerCounter(reg prometheus.Registerer, counter *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(counter); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return counter, nil
}

func (c *PrometheusCollector) IncSnapshot(doc string, exists bool) {
	label := "false"
	if exists {
		label = "true"
	}
	c.snapshots.WithLabelValues(doc, label).Inc()
}

func (c *PrometheusCollector) IncCommand(endpoint, outcome string) {
	c.commands.WithLabelValues(endpoint, outcome).Inc()
}
