// Package metrics exposes the engine's internal counters as Prometheus
// collectors, following the promauto registration style used elsewhere in
// the wider codebase for per-subsystem gauges and counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the provenance engine's observability surface. Both a nil
// *Metrics and the collector-less value from NewNoop are safe to call -
// every method guards against a disabled collector so the engine never
// branches on whether metrics are enabled.
type Metrics struct {
	watermark           prometheus.Gauge
	released            prometheus.Counter
	linesFiltered       prometheus.Counter
	parseErrors         prometheus.Counter
	lateLines           prometheus.Counter
	sentinelsSuppressed prometheus.Counter
	unitsClosed         prometheus.Counter
}

// New creates and registers the engine's collectors against the default
// registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers the engine's collectors against
// reg, letting tests use an isolated prometheus.NewRegistry() instead of
// the process-wide default.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		watermark: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "spadesocketbridge",
			Name:      "reorder_buffer_watermark",
			Help:      "Current number of records buffered in the reorder buffer.",
		}),
		released: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "spadesocketbridge",
			Name:      "records_released_total",
			Help:      "Total number of records released from the reorder buffer.",
		}),
		linesFiltered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "spadesocketbridge",
			Name:      "lines_filtered_total",
			Help:      "Total number of EOE/UNKNOWN/PROCTITLE lines dropped.",
		}),
		parseErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "spadesocketbridge",
			Name:      "event_id_parse_errors_total",
			Help:      "Total number of lines dropped for lacking a parseable event id.",
		}),
		lateLines: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "spadesocketbridge",
			Name:      "late_lines_total",
			Help:      "Total number of lines dropped for arriving after their event id was released.",
		}),
		sentinelsSuppressed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "spadesocketbridge",
			Name:      "ubsi_sentinels_suppressed_total",
			Help:      "Total number of UBSI sentinel kill() records consumed silently.",
		}),
		unitsClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "spadesocketbridge",
			Name:      "ubsi_units_closed_total",
			Help:      "Total number of units closed (emitted as type=UNIT records).",
		}),
	}
}

// NewNoop returns a Metrics value with no registered collectors, for use
// when --metrics-addr is unset.
func NewNoop() *Metrics {
	return &Metrics{}
}

// Handler returns the Prometheus scrape handler for --metrics-addr.
func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) SetWatermark(n int) {
	if m == nil || m.watermark == nil {
		return
	}
	m.watermark.Set(float64(n))
}

func (m *Metrics) IncReleased() {
	if m == nil || m.released == nil {
		return
	}
	m.released.Inc()
}

func (m *Metrics) IncLinesFiltered() {
	if m == nil || m.linesFiltered == nil {
		return
	}
	m.linesFiltered.Inc()
}

func (m *Metrics) IncParseErrors() {
	if m == nil || m.parseErrors == nil {
		return
	}
	m.parseErrors.Inc()
}

func (m *Metrics) IncLateLines() {
	if m == nil || m.lateLines == nil {
		return
	}
	m.lateLines.Inc()
}

func (m *Metrics) IncSentinelsSuppressed() {
	if m == nil || m.sentinelsSuppressed == nil {
		return
	}
	m.sentinelsSuppressed.Inc()
}

func (m *Metrics) IncUnitsClosed() {
	if m == nil || m.unitsClosed == nil {
		return
	}
	m.unitsClosed.Inc()
}
