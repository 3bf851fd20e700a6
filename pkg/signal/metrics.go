package signal

import "github.com/prometheus/client_golang/prometheus"

// Metrics contains the prometheus metrics shared by instrumented
// signals. One Metrics value is typically created per process and
// passed to each signal via WithMetrics; series are split by the
// "signal" label.
type Metrics struct {
	FiresTotal         *prometheus.CounterVec
	HandlerInvocations *prometheus.CounterVec
	Connections        *prometheus.GaugeVec
	WaitDuration       *prometheus.HistogramVec
}

var signalLabels = []string{"signal"}

// NewMetrics returns a new set of signal metrics registered in the
// given registerer.
func NewMetrics(promRegisterer prometheus.Registerer) *Metrics {
	var m Metrics

	m.FiresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalkit",
			Subsystem: "signal",
			Name:      "fires_total",
			Help:      "Total number of fires that delivered to at least one handler.",
		},
		signalLabels)

	promRegisterer.MustRegister(m.FiresTotal)

	m.HandlerInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalkit",
			Subsystem: "signal",
			Name:      "handler_invocations_total",
			Help:      "Total number of handler invocations.",
		},
		signalLabels)

	promRegisterer.MustRegister(m.HandlerInvocations)

	m.Connections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "signalkit",
			Subsystem: "signal",
			Name:      "connections",
			Help:      "Number of currently connected handlers.",
		},
		signalLabels)

	promRegisterer.MustRegister(m.Connections)

	m.WaitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "signalkit",
			Subsystem: "signal",
			Name:      "wait_duration_seconds",
			Help:      "Time spent blocked waiting for a fire.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		signalLabels)

	promRegisterer.MustRegister(m.WaitDuration)

	return &m
}
