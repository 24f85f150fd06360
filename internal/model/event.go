package model

import "time"

// AttendanceEvent is the canonical record of one physical tap.
// Events are immutable facts: the owner is resolved once at persist
// time and never rewritten by later reassociations.
type AttendanceEvent struct {
	ID        int64     `json:"id"` // store-assigned, monotonic
	UID       string    `json:"uid"`
	EventTime time.Time `json:"event_time"` // caller-supplied, not arrival time
	Device    string    `json:"device,omitempty"`
	PersonID  *int64    `json:"person_id,omitempty"`
	OwnerName string    `json:"owner_name,omitempty"` // joined at read time
	CreatedAt time.Time `json:"created_at"`
}

// ScanStatus tells a scanner what happened to its submission.
type ScanStatus string

const (
	// ScanCreated means a new canonical event was persisted.
	ScanCreated ScanStatus = "created"
	// ScanIgnored means the scan fell inside the dedup window of an
	// existing event for the same tag.
	ScanIgnored ScanStatus = "ignored"
)

// ScanResult is the outcome of one intake attempt. For ignored scans
// EventID references the earlier event that absorbed the burst, and
// Owner reflects the binding at response time, not at that event's
// creation.
type ScanResult struct {
	Status  ScanStatus `json:"status"`
	EventID int64      `json:"id"`
	Owner   *PersonRef `json:"owner"`
}

// EventFilter selects events for listing and export.
// A range with Start after End matches nothing.
type EventFilter struct {
	PersonID *int64
	Start    *time.Time // inclusive
	End      *time.Time // inclusive
}

// EventPage is one page of a filtered event listing. HasMore is a
// heuristic: true whenever the page came back full, so the final page
// of an exactly-divisible result set reports a phantom next page.
type EventPage struct {
	Events  []*AttendanceEvent `json:"events"`
	Page    int                `json:"page"`
	HasMore bool               `json:"has_more"`
}
