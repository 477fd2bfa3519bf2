// Package metrics holds Prometheus instruments that are used across the
// backend.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PartialUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_partial_updates_total",
			Help: "Partial-update statements executed, by table.",
		}, []string{"table"})

	UploadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_uploads_total",
			Help: "Derivative sets written successfully.",
		})

	UploadRollbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_upload_rollbacks_total",
			Help: "Derivative sets removed because the owning operation failed.",
		})

	VisitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_visits_total",
			Help: "Recorded page visits, by page.",
		}, []string{"page"})
)

func init() {
	prometheus.MustRegister(
		PartialUpdatesTotal,
		UploadsTotal,
		UploadRollbacksTotal,
		VisitsTotal,
	)
}
