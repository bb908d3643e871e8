package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lpdstrip"

// Metrics collects counters for the encode and transmit paths. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	framesEncoded  prometheus.Counter
	encodeErrors   prometheus.Counter
	encodeDuration prometheus.Histogram
	txBytes        prometheus.Counter
	txErrors       prometheus.Counter
	resizes        prometheus.Counter
	leds           prometheus.Gauge
}

// New creates the collectors and registers them with registerer unless it is
// nil.
func New(registerer prometheus.Registerer) *Metrics {
	m := Metrics{
		framesEncoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_encoded_total",
			Help:      "Number of full encode passes",
		}),
		encodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encode_errors_total",
			Help:      "Number of rejected encode passes",
		}),
		encodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_duration_seconds",
			Help:      "Duration of render and encode passes",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 12),
		}),
		txBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_bytes_total",
			Help:      "Number of bytes written to the strip",
		}),
		txErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_errors_total",
			Help:      "Number of failed transmissions",
		}),
		resizes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resizes_total",
			Help:      "Number of strip resizes",
		}),
		leds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "leds",
			Help:      "Current strip length",
		}),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.framesEncoded,
			m.encodeErrors,
			m.encodeDuration,
			m.txBytes,
			m.txErrors,
			m.resizes,
			m.leds,
		)
	}

	return &m
}

func (m *Metrics) Encoded(d time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.encodeErrors.Inc()
		return
	}
	m.framesEncoded.Inc()
	m.encodeDuration.Observe(d.Seconds())
}

func (m *Metrics) Transmitted(n int, err error) {
	if m == nil {
		return
	}
	m.txBytes.Add(float64(n))
	if err != nil {
		m.txErrors.Inc()
	}
}

func (m *Metrics) Resized(numLEDs int) {
	if m == nil {
		return
	}
	m.resizes.Inc()
	m.leds.Set(float64(numLEDs))
}
