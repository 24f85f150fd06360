package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncScanCreated is a no-op.
func (n *NoopRecorder) IncScanCreated() {}

// IncScanIgnored is a no-op.
func (n *NoopRecorder) IncScanIgnored() {}

// IncScanRejected is a no-op.
func (n *NoopRecorder) IncScanRejected() {}

// ObserveIntakeDuration is a no-op.
func (n *NoopRecorder) ObserveIntakeDuration(duration time.Duration) {}

// IncBindingAssociated is a no-op.
func (n *NoopRecorder) IncBindingAssociated() {}

// IncBindingRemoved is a no-op.
func (n *NoopRecorder) IncBindingRemoved() {}

// IncEventsListed is a no-op.
func (n *NoopRecorder) IncEventsListed() {}

// IncExportGenerated is a no-op.
func (n *NoopRecorder) IncExportGenerated() {}

// ObserveExportRows is a no-op.
func (n *NoopRecorder) ObserveExportRows(rows int) {}
