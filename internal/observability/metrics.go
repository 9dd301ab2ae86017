package observability

import (
	"net/http"

	"github.com/kfreiman/piigate/internal/pii"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// cleanLabel is the category label recorded for clean verdicts
const cleanLabel = "none"

// Metrics holds the Prometheus collectors for classification and redaction
type Metrics struct {
	registry *prometheus.Registry

	// VerdictsTotal counts classifier verdicts by category
	VerdictsTotal *prometheus.CounterVec
	// MessagesBlockedTotal counts candidate messages rejected before storage
	MessagesBlockedTotal *prometheus.CounterVec
	// RedactionsTotal counts masked substrings by rule label
	RedactionsTotal *prometheus.CounterVec
	// DocumentsScannedTotal counts document scans by result
	DocumentsScannedTotal *prometheus.CounterVec
}

// NewMetrics creates metrics on a fresh registry that also carries the Go
// runtime and process collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewMetricsWithRegistry(reg)
}

// NewMetricsWithRegistry creates metrics registered on reg
func NewMetricsWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		VerdictsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "piigate_verdicts_total",
			Help: "Total number of classifier verdicts by category",
		}, []string{"category"}),
		MessagesBlockedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "piigate_messages_blocked_total",
			Help: "Total number of candidate messages blocked for PII",
		}, []string{"category"}),
		RedactionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "piigate_redactions_total",
			Help: "Total number of substrings masked by redaction rule",
		}, []string{"label"}),
		DocumentsScannedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "piigate_documents_scanned_total",
			Help: "Total number of document scans by result",
		}, []string{"result"}),
	}
	m.initialize()
	return m
}

// initialize pre-creates every label value so series appear at startup
func (m *Metrics) initialize() {
	m.VerdictsTotal.WithLabelValues(cleanLabel)
	for _, c := range pii.Categories() {
		m.VerdictsTotal.WithLabelValues(c.String())
		m.MessagesBlockedTotal.WithLabelValues(c.String())
	}
	for _, label := range []string{"ssn", "id", "email", "card"} {
		m.RedactionsTotal.WithLabelValues(label)
	}
}

// ObserveVerdict records a classifier verdict
func (m *Metrics) ObserveVerdict(verdict pii.Verdict) {
	label := cleanLabel
	if verdict.HasPII {
		label = verdict.Category.String()
	}
	m.VerdictsTotal.WithLabelValues(label).Inc()
}

// ObserveBlocked records a blocked message
func (m *Metrics) ObserveBlocked(category pii.Category) {
	m.MessagesBlockedTotal.WithLabelValues(category.String()).Inc()
}

// ObserveRedactions adds per-rule match counts
func (m *Metrics) ObserveRedactions(counts map[string]int) {
	for label, n := range counts {
		if n > 0 {
			m.RedactionsTotal.WithLabelValues(label).Add(float64(n))
		}
	}
}

// ObserveScan records a document scan result
func (m *Metrics) ObserveScan(result string) {
	m.DocumentsScannedTotal.WithLabelValues(result).Inc()
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
