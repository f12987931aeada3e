package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the fines module. All methods are safe on
// a nil receiver.
type Metrics struct {
	// Fines accepted and persisted
	FinesIssued prometheus.Counter

	// Rejected issuance attempts by reason: invalid_format, missing_fields, validation_error
	IssuanceRejected *prometheus.CounterVec

	// Views whose offence reference did not resolve
	UnresolvedReferences prometheus.Counter

	// Payment confirmations applied, and ones ignored because the fine was already paid
	PaymentsConfirmed prometheus.Counter
	PaymentsDuplicate prometheus.Counter

	// Upstream snapshot fetch failures and latency by source
	FetchFailures *prometheus.CounterVec
	FetchLatency  *prometheus.HistogramVec

	// Reports served with a degraded snapshot
	PartialReports prometheus.Counter
}

// New creates a new Metrics instance with all fines metrics registered.
func New() *Metrics {
	return &Metrics{
		FinesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finetrack_fines_issued_total",
			Help: "Total number of fines accepted and persisted",
		}),
		IssuanceRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "finetrack_fines_issuance_rejected_total",
			Help: "Fine issuance attempts rejected by validation, by reason",
		}, []string{"reason"}),
		UnresolvedReferences: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finetrack_fines_unresolved_offence_references_total",
			Help: "Enriched views produced with an unresolved offence reference",
		}),
		PaymentsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finetrack_payments_confirmed_total",
			Help: "Payment confirmations that marked a fine paid",
		}),
		PaymentsDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finetrack_payments_duplicate_total",
			Help: "Payment confirmations for fines that were already paid",
		}),
		FetchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "finetrack_snapshot_fetch_failures_total",
			Help: "Failed snapshot fetches from the persistence collaborator, by source",
		}, []string{"source"}),
		FetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finetrack_snapshot_fetch_duration_seconds",
			Help:    "Duration of snapshot fetches by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}),
		PartialReports: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finetrack_partial_reports_total",
			Help: "Reports computed over a partial snapshot",
		}),
	}
}

func (m *Metrics) IncrementFinesIssued() {
	if m != nil {
		m.FinesIssued.Inc()
	}
}

func (m *Metrics) IncrementIssuanceRejected(reason string) {
	if m != nil {
		m.IssuanceRejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) AddUnresolvedReferences(n int) {
	if m != nil && n > 0 {
		m.UnresolvedReferences.Add(float64(n))
	}
}

func (m *Metrics) IncrementPaymentsConfirmed() {
	if m != nil {
		m.PaymentsConfirmed.Inc()
	}
}

func (m *Metrics) IncrementPaymentsDuplicate() {
	if m != nil {
		m.PaymentsDuplicate.Inc()
	}
}

func (m *Metrics) IncrementFetchFailure(source string) {
	if m != nil {
		m.FetchFailures.WithLabelValues(source).Inc()
	}
}

// ObserveFetchLatency records the duration of fetching one snapshot source.
func (m *Metrics) ObserveFetchLatency(source string, d time.Duration) {
	if m != nil {
		m.FetchLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementPartialReports() {
	if m != nil {
		m.PartialReports.Inc()
	}
}
