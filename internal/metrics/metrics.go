// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Resolution outcomes recorded by the resolver.
const (
	ResolveHit        = "hit"        // found by external id, no provider call
	ResolveReconciled = "reconciled" // linked to an existing row by email
	ResolveCreated    = "created"    // new user row created
	ResolveRecovered  = "recovered"  // lost a create race, re-read the winner
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Identity resolution metrics
	IncUserResolved(outcome string)

	// Insight cache metrics
	IncInsightCacheHit()
	IncInsightComputed()

	// Profile update metrics
	IncProfileUpdated()
	ObserveProfileUpdateDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
