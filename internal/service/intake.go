package service

import (
	"context"
	"errors"
	"time"

	"github.com/pontus/pontus/internal/metrics"
	"github.com/pontus/pontus/internal/model"
	"github.com/pontus/pontus/internal/repository"
)

// DedupWindow is the interval within which repeat scans of the same
// tag are restatements of one physical tap, not new events. Reader
// hardware emits several notifications per tap; windowing on the
// caller-supplied event time keeps this correct under clock skew
// between devices, as long as each device's clock is monotonic
// across its own burst.
const DedupWindow = 3000 * time.Millisecond

// IntakeStore is the persistence contract the intake engine needs.
type IntakeStore interface {
	LatestEventSince(ctx context.Context, uid string, since time.Time) (*model.AttendanceEvent, error)
	InsertEvent(ctx context.Context, event *model.AttendanceEvent) error
	ResolveTagOwner(ctx context.Context, uid string) (*model.Person, error)
}

// ScanInput is one raw scan from a reader.
type ScanInput struct {
	UID       string
	EventTime time.Time // caller-supplied tap time, required
	Device    string
}

// IntakeService turns raw scans into canonical attendance events.
type IntakeService struct {
	store   IntakeStore
	metrics metrics.Recorder
}

// NewIntakeService creates a new IntakeService.
func NewIntakeService(store IntakeStore, recorder metrics.Recorder) *IntakeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &IntakeService{store: store, metrics: recorder}
}

// SubmitScan records a scan, suppressing duplicates within DedupWindow.
//
// The check is the most-recent event for the tag with event time at or
// after eventTime-DedupWindow: one indexed lookup, and a tap arriving
// just after the window closes starts a fresh event. When suppressed,
// the result carries the prior event's id and the owner as bound right
// now; the stored event keeps whatever owner it had at creation.
// Unknown tags are recorded with a null owner, not rejected, so
// hardware can go live before its owner is registered.
//
// The check-then-insert pair is not transactional: concurrent bursts
// for one tag may over-create a few near-duplicates, which is the
// accepted outcome. Store failures surface as ErrUnavailable and are
// never retried here; retry policy belongs to the caller.
func (s *IntakeService) SubmitScan(ctx context.Context, input ScanInput) (*model.ScanResult, error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveIntakeDuration(time.Since(started))
	}()

	if input.UID == "" || input.EventTime.IsZero() {
		s.metrics.IncScanRejected()
		return nil, ErrInvalidInput
	}

	windowStart := input.EventTime.Add(-DedupWindow)
	prior, err := s.store.LatestEventSince(ctx, input.UID, windowStart)
	if err != nil {
		return nil, unavailable(err)
	}

	if prior != nil {
		owner, err := s.resolveOwner(ctx, input.UID)
		if err != nil {
			return nil, err
		}
		s.metrics.IncScanIgnored()
		return &model.ScanResult{
			Status:  model.ScanIgnored,
			EventID: prior.ID,
			Owner:   owner.Ref(),
		}, nil
	}

	owner, err := s.resolveOwner(ctx, input.UID)
	if err != nil {
		return nil, err
	}

	event := &model.AttendanceEvent{
		UID:       input.UID,
		EventTime: input.EventTime,
		Device:    input.Device,
	}
	if owner != nil {
		event.PersonID = &owner.ID
	}

	if err := s.store.InsertEvent(ctx, event); err != nil {
		return nil, unavailable(err)
	}

	s.metrics.IncScanCreated()

	return &model.ScanResult{
		Status:  model.ScanCreated,
		EventID: event.ID,
		Owner:   owner.Ref(),
	}, nil
}

// resolveOwner looks up the tag's current owner; an unknown tag is a
// valid nil owner, not an error.
func (s *IntakeService) resolveOwner(ctx context.Context, uid string) (*model.Person, error) {
	person, err := s.store.ResolveTagOwner(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrBindingNotFound) {
			return nil, nil
		}
		return nil, unavailable(err)
	}
	return person, nil
}
