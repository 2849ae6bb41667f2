package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNoopCollector(t *testing.T) {
	c := Noop()
	require.NotNil(t, c)
	c.IncSnapshot("temperature", true)
	c.IncCommand("/fan/state", OutcomeSent)
}

func TestPrometheusCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	c.IncSnapshot("temperature", true)
	c.IncSnapshot("temperature", true)
	c.IncSnapshot("actuators", false)
	c.IncCommand("/light/state", OutcomeSent)

	require.Equal(t, 2.0, testutil.ToFloat64(c.snapshots.WithLabelValues("temperature", "true")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.snapshots.WithLabelValues("actuators", "false")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.commands.WithLabelValues("/light/state", OutcomeSent)))
}

func TestPrometheusCollectorReusesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	again, err := NewPrometheusCollector(reg)
	require.NoError(t, err)
	require.Same(t, first.snapshots, again.snapshots)
}
