package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	balanceComputations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "balance_computations_total",
			Help: "Total seller balance derivations",
		},
	)

	disputeValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispute_validations_total",
			Help: "Dispute precondition checks by outcome",
		},
		[]string{"outcome"},
	)

	disputeLookupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispute_lookup_failures_total",
			Help: "Existing-dispute lookups that failed and were treated as no dispute found",
		},
	)

	transferSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfer_submissions_total",
			Help: "Transfer confirmation submissions by side and result",
		},
		[]string{"side", "result"},
	)

	escrowAPICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "escrow_api_call_duration_seconds",
			Help:    "Duration of calls to the escrow backend",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"operation"},
	)
)

// TrackBalanceComputation counts one balance derivation.
func TrackBalanceComputation() {
	balanceComputations.Inc()
}

// TrackDisputeValidation records the outcome of a precondition check
// (eligible, no_escrow, not_locked, already_exists).
func TrackDisputeValidation(outcome string) {
	disputeValidations.WithLabelValues(outcome).Inc()
}

// TrackDisputeLookupFailure counts a swallowed dispute-list lookup failure.
func TrackDisputeLookupFailure() {
	disputeLookupFailures.Inc()
}

// TrackTransferSubmission records one handshake submission.
func TrackTransferSubmission(side, result string) {
	transferSubmissions.WithLabelValues(side, result).Inc()
}

// TrackEscrowAPICall records the duration of one escrow backend call.
func TrackEscrowAPICall(operation string, duration time.Duration) {
	escrowAPICallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
