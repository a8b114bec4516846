package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fitpulse"

// Metrics holds the collectors recorded by the session client.
type Metrics struct {
	storeOps      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
	signIns       *prometheus.CounterVec
	signedIn      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
// Pass prometheus.NewRegistry() in tests to avoid global registration conflicts.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of key-value store operations",
			},
			[]string{"op", "result"},
		),
		storeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of key-value store operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		signIns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sign_ins_total",
				Help:      "Total number of sign-in attempts",
			},
			[]string{"result"},
		),
		signedIn: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "session_signed_in",
				Help:      "1 when the client holds a session, 0 otherwise",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.storeOps, m.storeDuration, m.signIns, m.signedIn)
	}
	return m
}

// ObserveStoreOp records one key-value operation.
func (m *Metrics) ObserveStoreOp(op string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeOps.WithLabelValues(op, result(err)).Inc()
	m.storeDuration.WithLabelValues(op).Observe(took.Seconds())
}

// ObserveSignIn records the outcome of a sign-in attempt.
func (m *Metrics) ObserveSignIn(err error) {
	if m == nil {
		return
	}
	m.signIns.WithLabelValues(result(err)).Inc()
}

// SetSignedIn updates the session gauge.
func (m *Metrics) SetSignedIn(signedIn bool) {
	if m == nil {
		return
	}
	if signedIn {
		m.signedIn.Set(1)
	} else {
		m.signedIn.Set(0)
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
