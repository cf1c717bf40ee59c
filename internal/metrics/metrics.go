// Package metrics holds the Prometheus collectors of the catalog.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediavault_refresh_total",
			Help: "Feed refreshes by kind (subscription, remote_playlist) and outcome",
		},
		[]string{"kind", "outcome"},
	)

	RemotePlaylistReconcileTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediavault_remote_playlist_reconcile_total",
			Help: "Remote playlist reconciliations by result (unchanged, updated)",
		},
		[]string{"result"},
	)

	MembershipOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediavault_membership_ops_total",
			Help: "Playlist membership mutations by operation",
		},
		[]string{"op"},
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediavault_refresh_duration_seconds",
			Help:    "Duration of a full refresh pass",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// ReconcileResult labels the outcome of a remote playlist reconciliation.
func ReconcileResult(updated bool) string {
	if updated {
		return "updated"
	}
	return "unchanged"
}
