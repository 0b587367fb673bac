// Package metrics exposes prometheus collectors for the financial engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsCollected counts successfully issued receipts.
	PaymentsCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_collected_total",
			Help: "Number of installment payments collected successfully",
		},
		[]string{"company_id"},
	)

	// CollectionFailures counts rejected collection attempts by reason.
	CollectionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_collection_failures_total",
			Help: "Number of rejected payment collection attempts",
		},
		[]string{"company_id", "reason"},
	)

	// LedgerBuilds counts ledger projections.
	LedgerBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_builds_total",
			Help: "Number of ledger projections computed",
		},
		[]string{"company_id"},
	)

	// LedgerBuildDuration observes end-to-end ledger build latency,
	// including the concurrent source fetches.
	LedgerBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_build_duration_seconds",
			Help:    "Time taken to fetch sources and project the ledger",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ProfitComputations counts profit split calculations.
	ProfitComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profit_computations_total",
			Help: "Number of profit split computations",
		},
		[]string{"company_id"},
	)
)
