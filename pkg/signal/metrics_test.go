package signal

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedSignal(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewPedanticRegistry()
	m := NewMetrics(registry)

	s := New[int](WithName("greet"), WithMetrics(m))

	c1 := s.Connect(func(int) {})
	s.Connect(func(int) {})

	require.Equal(t, 2.0, testutil.ToFloat64(m.Connections.WithLabelValues("greet")))

	s.Fire(1)
	s.Fire(2)

	require.Equal(t, 2.0, testutil.ToFloat64(m.FiresTotal.WithLabelValues("greet")))
	require.Equal(t, 4.0, testutil.ToFloat64(m.HandlerInvocations.WithLabelValues("greet")))

	c1.Disconnect()
	require.Equal(t, 1.0, testutil.ToFloat64(m.Connections.WithLabelValues("greet")))

	s.Fire(3)
	require.Equal(t, 3.0, testutil.ToFloat64(m.FiresTotal.WithLabelValues("greet")))
	require.Equal(t, 5.0, testutil.ToFloat64(m.HandlerInvocations.WithLabelValues("greet")))

	s.Close()
	require.Equal(t, 0.0, testutil.ToFloat64(m.Connections.WithLabelValues("greet")))

	// A fire with no handlers is not counted as a delivery.
	s.Fire(4)
	require.Equal(t, 3.0, testutil.ToFloat64(m.FiresTotal.WithLabelValues("greet")))
}

func TestMetricsSharedAcrossHub(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewPedanticRegistry()
	m := NewMetrics(registry)

	h := NewHub[string](WithMetrics(m))

	h.Signal("alpha").Connect(func(string) {})
	h.Signal("beta").Connect(func(string) {})

	h.Fire("alpha", "x")

	require.Equal(t, 1.0, testutil.ToFloat64(m.FiresTotal.WithLabelValues("alpha")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.FiresTotal.WithLabelValues("beta")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Connections.WithLabelValues("alpha")))
}
