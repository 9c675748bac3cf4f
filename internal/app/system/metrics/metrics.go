// Package metrics exposes the service's Prometheus instruments. They
// are registered on the default registry; bootstrap mounts promhttp to
// serve them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProposalsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "umunna_proposals_created_total",
		Help: "Pending changes created through the workflow.",
	})

	ProposalsApproved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "umunna_proposals_approved_total",
		Help: "Pending changes approved.",
	})

	ProposalsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "umunna_proposals_rejected_total",
		Help: "Pending changes rejected, directly or by cascade.",
	})

	ConflictsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "umunna_conflicts_detected_total",
		Help: "Conflicting proposal pairs detected at propose time.",
	})

	ConflictScanFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "umunna_conflict_scan_failures_total",
		Help: "Conflict scans that failed and degraded to an empty conflict list.",
	})

	GedcomImports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "umunna_gedcom_imports_total",
		Help: "GEDCOM files imported.",
	})

	GedcomExports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "umunna_gedcom_exports_total",
		Help: "GEDCOM files exported.",
	})
)
