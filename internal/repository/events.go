package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventnav/program-service/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

const eventColumns = `id, title, description, date_start, date_end, location, status, created_at, updated_at`

// EventRepository handles persistence for top-level events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.DateStart, &e.DateEnd,
		&e.Location, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}

// Create inserts a new event with a generated UUID.
func (r *EventRepository) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	now := time.Now().UTC()
	e := &model.Event{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		DateStart:   req.DateStart,
		DateEnd:     req.DateEnd,
		Location:    req.Location,
		Status:      model.EventStatus(req.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if e.Status == "" {
		e.Status = model.EventUpcoming
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, title, description, date_start, date_end, location, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.Title, e.Description, e.DateStart, e.DateEnd, e.Location, e.Status, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

// List returns all events, newest first.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY date_start DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	return scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// Update applies the non-nil fields of req to an event.
func (r *EventRepository) Update(ctx context.Context, id uuid.UUID, req model.UpdateEventRequest) (*model.Event, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.DateStart != nil {
		e.DateStart = *req.DateStart
	}
	if req.DateEnd != nil {
		e.DateEnd = *req.DateEnd
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.Status != nil {
		e.Status = model.EventStatus(*req.Status)
	}
	e.UpdatedAt = time.Now().UTC()

	_, err = r.db.Exec(ctx,
		`UPDATE events
		 SET title = $2, description = $3, date_start = $4, date_end = $5,
		     location = $6, status = $7, updated_at = $8
		 WHERE id = $1`,
		e.ID, e.Title, e.Description, e.DateStart, e.DateEnd, e.Location, e.Status, e.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

// Delete removes an event and, via cascading constraints, its program.
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
