package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ScansCreated          uint64
	ScansIgnored          uint64
	ScansRejected         uint64
	IntakeDurationCount   uint64
	IntakeDurationTotalNs int64
	BindingsAssociated    uint64
	BindingsRemoved       uint64
	EventsListed          uint64
	ExportsGenerated      uint64
	ExportRowsTotal       uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	scansCreated          uint64
	scansIgnored          uint64
	scansRejected         uint64
	intakeDurationCount   uint64
	intakeDurationTotalNs int64
	bindingsAssociated    uint64
	bindingsRemoved       uint64
	eventsListed          uint64
	exportsGenerated      uint64
	exportRowsTotal       uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		ScansCreated:          atomic.LoadUint64(&m.scansCreated),
		ScansIgnored:          atomic.LoadUint64(&m.scansIgnored),
		ScansRejected:         atomic.LoadUint64(&m.scansRejected),
		IntakeDurationCount:   atomic.LoadUint64(&m.intakeDurationCount),
		IntakeDurationTotalNs: atomic.LoadInt64(&m.intakeDurationTotalNs),
		BindingsAssociated:    atomic.LoadUint64(&m.bindingsAssociated),
		BindingsRemoved:       atomic.LoadUint64(&m.bindingsRemoved),
		EventsListed:          atomic.LoadUint64(&m.eventsListed),
		ExportsGenerated:      atomic.LoadUint64(&m.exportsGenerated),
		ExportRowsTotal:       atomic.LoadUint64(&m.exportRowsTotal),
	}
}

// IncScanCreated increments the created scan counter.
func (m *InMemoryRecorder) IncScanCreated() {
	atomic.AddUint64(&m.scansCreated, 1)
}

// IncScanIgnored increments the deduplicated scan counter.
func (m *InMemoryRecorder) IncScanIgnored() {
	atomic.AddUint64(&m.scansIgnored, 1)
}

// IncScanRejected increments the rejected scan counter.
func (m *InMemoryRecorder) IncScanRejected() {
	atomic.AddUint64(&m.scansRejected, 1)
}

// ObserveIntakeDuration records one intake round trip.
func (m *InMemoryRecorder) ObserveIntakeDuration(duration time.Duration) {
	atomic.AddUint64(&m.intakeDurationCount, 1)
	atomic.AddInt64(&m.intakeDurationTotalNs, duration.Nanoseconds())
}

// IncBindingAssociated increments the association counter.
func (m *InMemoryRecorder) IncBindingAssociated() {
	atomic.AddUint64(&m.bindingsAssociated, 1)
}

// IncBindingRemoved increments the disassociation counter.
func (m *InMemoryRecorder) IncBindingRemoved() {
	atomic.AddUint64(&m.bindingsRemoved, 1)
}

// IncEventsListed increments the listing counter.
func (m *InMemoryRecorder) IncEventsListed() {
	atomic.AddUint64(&m.eventsListed, 1)
}

// IncExportGenerated increments the export counter.
func (m *InMemoryRecorder) IncExportGenerated() {
	atomic.AddUint64(&m.exportsGenerated, 1)
}

// ObserveExportRows adds to the exported row total.
func (m *InMemoryRecorder) ObserveExportRows(rows int) {
	if rows > 0 {
		atomic.AddUint64(&m.exportRowsTotal, uint64(rows))
	}
}
