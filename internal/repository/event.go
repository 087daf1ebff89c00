package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/event-manager/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts the event and sets its generated ID. Date and Time must be
// YYYY-MM-DD and HH:MM.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO events (user_id, event_name, event_date, event_time, location, description)
		 VALUES ($1, $2, $3::date, $4::time, $5, $6)
		 RETURNING event_id`,
		e.OwnerID, e.Name, e.Date, e.Time, e.Location, e.Description,
	).Scan(&e.ID)
	if err != nil {
		if pgErrorCode(err) == codeForeignKeyViolation {
			return ErrOwnerNotFound
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's events, most recent date first.
func (r *EventRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.EventSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT event_id, event_name, to_char(event_date, 'YYYY-MM-DD')
		 FROM events
		 WHERE user_id = $1
		 ORDER BY event_date DESC, event_id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.EventSummary
	for rows.Next() {
		var e model.EventSummary
		if err := rows.Scan(&e.ID, &e.Name, &e.Date); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	var e model.Event
	err := r.db.QueryRow(ctx,
		`SELECT event_id, user_id, event_name,
		        to_char(event_date, 'YYYY-MM-DD'), to_char(event_time, 'HH24:MI'),
		        location, COALESCE(description, '')
		 FROM events WHERE event_id = $1`,
		id,
	).Scan(&e.ID, &e.OwnerID, &e.Name, &e.Date, &e.Time, &e.Location, &e.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}
