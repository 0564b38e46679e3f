package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fluxbase-eu/bundlebudget/internal/budget"
)

// Metrics holds the Prometheus metrics for budget checks. Each instance owns
// its registry so a run can be exported as a node-exporter textfile.
type Metrics struct {
	registry *prometheus.Registry

	checksTotal     *prometheus.CounterVec
	checkDuration   prometheus.Histogram
	lastCheckTime   prometheus.Gauge
	sizeBytes       *prometheus.GaugeVec
	violationsTotal *prometheus.CounterVec
	messagesTotal   *prometheus.CounterVec
	componentStyles prometheus.Gauge
}

// NewMetrics creates and registers all budget metrics on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		checksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundlebudget_checks_total",
				Help: "Total number of budget check passes by result",
			},
			[]string{"result"},
		),
		checkDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bundlebudget_check_duration_seconds",
				Help:    "Duration of budget check passes in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30},
			},
		),
		lastCheckTime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bundlebudget_last_check_timestamp_seconds",
				Help: "Unix time of the last completed check pass",
			},
		),
		sizeBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bundlebudget_size_bytes",
				Help: "Measured size per budget and label, source maps excluded",
			},
			[]string{"budget", "type", "label"},
		),
		violationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundlebudget_violations_total",
				Help: "Total number of threshold violations",
			},
			[]string{"type", "threshold", "severity"},
		),
		messagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundlebudget_messages_total",
				Help: "Total number of messages emitted by channel",
			},
			[]string{"severity"},
		),
		componentStyles: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bundlebudget_component_styles",
				Help: "Number of component stylesheets measured in the last pass",
			},
		),
	}
}

// ObserveSize records a measured size
func (m *Metrics) ObserveSize(b budget.Budget, s budget.Size) {
	m.sizeBytes.WithLabelValues(b.Label(), string(b.Type()), s.Label).Set(float64(s.Bytes))
}

// ObserveViolation records a threshold violation
func (m *Metrics) ObserveViolation(b budget.Budget, msg budget.Message) {
	m.violationsTotal.WithLabelValues(string(b.Type()), msg.Threshold.String(), msg.Severity.String()).Inc()
}

// RecordComponentStyles records how many stylesheets were checked
func (m *Metrics) RecordComponentStyles(n int) {
	m.componentStyles.Set(float64(n))
}

// RecordCheck records the outcome of one pass
func (m *Metrics) RecordCheck(msgs budget.Messages, duration time.Duration, err error) {
	m.checksTotal.WithLabelValues(checkResult(msgs, err)).Inc()
	m.checkDuration.Observe(duration.Seconds())
	m.lastCheckTime.SetToCurrentTime()
	m.messagesTotal.WithLabelValues(budget.SeverityWarning.String()).Add(float64(len(msgs.Warnings)))
	m.messagesTotal.WithLabelValues(budget.SeverityError.String()).Add(float64(len(msgs.Errors)))
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every metric to path in the text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// checkResult classifies a pass for the checks_total counter
func checkResult(msgs budget.Messages, err error) string {
	switch {
	case err != nil:
		return "error"
	case len(msgs.Errors) > 0:
		return "fail"
	case len(msgs.Warnings) > 0:
		return "warn"
	default:
		return "pass"
	}
}
