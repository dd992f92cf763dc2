package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BalanceMutations counts committed balance mutations by operation and bucket.
	BalanceMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balance_mutations_total",
			Help: "Total number of committed balance mutations",
		},
		[]string{"operation", "balance_type"},
	)

	// VersionConflicts counts optimistic-lock write rejections that triggered a retry.
	VersionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "balance_version_conflicts_total",
		Help: "Total number of optimistic concurrency conflicts on balance writes",
	})

	// RetriesExhausted counts mutations that failed after the retry budget ran out.
	RetriesExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "balance_retries_exhausted_total",
		Help: "Total number of balance mutations abandoned after exhausting retries",
	})

	// OverrideSubmissions counts manual override outcomes.
	OverrideSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balance_override_submissions_total",
			Help: "Total number of manual override submissions by result",
		},
		[]string{"kind", "result"},
	)

	// ReconciliationDrift exposes the last observed drift per company and bucket.
	ReconciliationDrift = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "balance_reconciliation_drift",
			Help: "Signed difference between stored and recalculated balance",
		},
		[]string{"company_id", "balance_type"},
	)

	// DocumentEvents counts handled document lifecycle notifications.
	DocumentEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balance_document_events_total",
			Help: "Total number of handled document balance events",
		},
		[]string{"kind", "result"},
	)
)
