package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pontus/pontus/internal/model"
)

// InsertEvent persists a new attendance event and fills in the
// store-assigned id and creation time. Events are append-only; there
// is deliberately no update or delete counterpart.
func (r *Repository) InsertEvent(ctx context.Context, event *model.AttendanceEvent) error {
	query := `
		INSERT INTO attendance_events (uid, event_time, device, person_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		event.UID,
		event.EventTime,
		nullableString(event.Device),
		event.PersonID,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// LatestEventSince returns the most recent event for a tag with event
// time at or after since, or nil when none exists. Backed by the
// (uid, event_time DESC) index so the dedup check stays a single
// indexed lookup.
func (r *Repository) LatestEventSince(ctx context.Context, uid string, since time.Time) (*model.AttendanceEvent, error) {
	query := `
		SELECT id, uid, event_time, COALESCE(device, ''), person_id, created_at
		FROM attendance_events
		WHERE uid = $1 AND event_time >= $2
		ORDER BY event_time DESC
		LIMIT 1
	`

	var event model.AttendanceEvent
	err := r.pool.QueryRow(ctx, query, uid, since).Scan(
		&event.ID,
		&event.UID,
		&event.EventTime,
		&event.Device,
		&event.PersonID,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest event: %w", err)
	}

	return &event, nil
}

// ListEvents returns events matching the filter, newest first with id
// as tiebreak, limited to one page.
func (r *Repository) ListEvents(ctx context.Context, filter model.EventFilter, limit, offset int) ([]*model.AttendanceEvent, error) {
	query, args := buildEventQuery(filter)
	query += " LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	return r.queryEvents(ctx, query, args)
}

// ExportEvents returns the full matching set in listing order.
func (r *Repository) ExportEvents(ctx context.Context, filter model.EventFilter) ([]*model.AttendanceEvent, error) {
	query, args := buildEventQuery(filter)
	return r.queryEvents(ctx, query, args)
}

func (r *Repository) queryEvents(ctx context.Context, query string, args []any) ([]*model.AttendanceEvent, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*model.AttendanceEvent
	for rows.Next() {
		var event model.AttendanceEvent
		if err := rows.Scan(
			&event.ID,
			&event.UID,
			&event.EventTime,
			&event.Device,
			&event.PersonID,
			&event.OwnerName,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}

// buildEventQuery assembles the filtered SELECT shared by listing and
// export. The owner name is joined at read time for display only; the
// persisted person_id stays the source of truth.
func buildEventQuery(filter model.EventFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT e.id, e.uid, e.event_time, COALESCE(e.device, ''), e.person_id,
			   COALESCE(p.name, ''), e.created_at
		FROM attendance_events e
		LEFT JOIN persons p ON p.id = e.person_id
	`)

	var clauses []string
	var args []any
	if filter.PersonID != nil {
		args = append(args, *filter.PersonID)
		clauses = append(clauses, "e.person_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		clauses = append(clauses, "e.event_time >= $"+strconv.Itoa(len(args)))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		clauses = append(clauses, "e.event_time <= $"+strconv.Itoa(len(args)))
	}

	if len(clauses) > 0 {
		sb.WriteString(" WHERE " + strings.Join(clauses, " AND "))
	}
	sb.WriteString(" ORDER BY e.event_time DESC, e.id DESC")

	return sb.String(), args
}

// nullableString returns nil for empty strings.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
