package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pontus/pontus/internal/metrics"
	"github.com/pontus/pontus/internal/model"
)

// Pagination bounds.
const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// csvHeader is the export header row.
var csvHeader = []string{"id", "uid", "timestamp", "device", "userId", "userName"}

// EventStore is the persistence contract the query layer needs.
type EventStore interface {
	ListEvents(ctx context.Context, filter model.EventFilter, limit, offset int) ([]*model.AttendanceEvent, error)
	ExportEvents(ctx context.Context, filter model.EventFilter) ([]*model.AttendanceEvent, error)
}

// EventService serves role-scoped views over the event log.
type EventService struct {
	store   EventStore
	metrics metrics.Recorder
}

// NewEventService creates a new EventService.
func NewEventService(store EventStore, recorder metrics.Recorder) *EventService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &EventService{store: store, metrics: recorder}
}

// List returns one page of events, newest first (id descending breaks
// ties so the order is total). Non-admin callers only ever see their
// own events: their personId filter is overwritten, not validated.
// HasMore is the full-page heuristic, not a count query.
func (s *EventService) List(ctx context.Context, caller model.Caller, filter model.EventFilter, page, pageSize int) (*model.EventPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	if !caller.IsAdmin() {
		personID := caller.PersonID
		filter.PersonID = &personID
	}

	if emptyRange(filter) {
		return &model.EventPage{Events: []*model.AttendanceEvent{}, Page: page}, nil
	}

	events, err := s.store.ListEvents(ctx, filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, unavailable(err)
	}
	if events == nil {
		events = []*model.AttendanceEvent{}
	}

	s.metrics.IncEventsListed()

	return &model.EventPage{
		Events:  events,
		Page:    page,
		HasMore: len(events) == pageSize,
	}, nil
}

// ExportCSV writes the full filtered event set as CSV: a header row
// plus one row per event, in listing order. Admin only.
func (s *EventService) ExportCSV(ctx context.Context, caller model.Caller, filter model.EventFilter, w io.Writer) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}

	var events []*model.AttendanceEvent
	if !emptyRange(filter) {
		var err error
		events, err = s.store.ExportEvents(ctx, filter)
		if err != nil {
			return unavailable(err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, event := range events {
		if err := cw.Write(csvRow(event)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	s.metrics.IncExportGenerated()
	s.metrics.ObserveExportRows(len(events))

	return nil
}

// csvRow renders one event. Unresolved owners export as empty fields,
// not zeroes.
func csvRow(event *model.AttendanceEvent) []string {
	personID := ""
	if event.PersonID != nil {
		personID = strconv.FormatInt(*event.PersonID, 10)
	}
	return []string{
		strconv.FormatInt(event.ID, 10),
		event.UID,
		event.EventTime.UTC().Format(time.RFC3339),
		event.Device,
		personID,
		event.OwnerName,
	}
}

// emptyRange reports whether the time range can match nothing.
// A start after end is permissive filtering (empty result), not an
// input error.
func emptyRange(filter model.EventFilter) bool {
	return filter.Start != nil && filter.End != nil && filter.Start.After(*filter.End)
}
