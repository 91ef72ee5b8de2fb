package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DispatchRoundsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transit", Name: "dispatch_rounds_total", Help: "Total dispatch rounds executed"})
	ProposalsTotal      = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transit", Name: "proposals_total", Help: "Total ride proposals sent to drivers"})
	AssignmentFailures  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transit", Name: "assignment_failures_total", Help: "Transits that exhausted driver search"})
	GeocodeFailures     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transit", Name: "geocode_failures_total", Help: "Geocoding provider failures during dispatch"})
	SearchFailures      = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transit", Name: "search_failures_total", Help: "Position store failures during candidate search"})
	TransitsCompleted   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transit", Name: "completed_total", Help: "Transits completed"})

	DispatchRoundDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "transit",
		Name:      "dispatch_round_duration_seconds",
		Help:      "Dispatch round latency distribution",
		Buckets:   prometheus.DefBuckets,
	})
)
