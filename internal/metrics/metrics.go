// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Intake metrics
	IncScanCreated()
	IncScanIgnored()
	IncScanRejected()
	ObserveIntakeDuration(duration time.Duration)

	// Directory metrics
	IncBindingAssociated()
	IncBindingRemoved()

	// Query & export metrics
	IncEventsListed()
	IncExportGenerated()
	ObserveExportRows(rows int)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
