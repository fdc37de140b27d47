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

// ErrCapacityBelowCount is returned when an admin shrinks a session's
// capacity below the seats already taken.
var ErrCapacityBelowCount = errors.New("capacity below current registration count")

const sessionColumns = `s.id, s.event_id, s.title, s.description, s.date_start, s.date_end,
	s.location_id, s.type, s.capacity, s.registered_count, s.approval_required, s.status,
	s.created_at, s.updated_at, COALESCE(l.name, '')`

// SessionRepository handles persistence for program entries. It never
// writes registered_count: that column belongs to the admission
// primitives in AdmissionStore.
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.EventID, &s.Title, &s.Description, &s.DateStart, &s.DateEnd,
		&s.LocationID, &s.Type, &s.Capacity, &s.RegisteredCount, &s.ApprovalRequired,
		&s.Status, &s.CreatedAt, &s.UpdatedAt, &s.LocationName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &s, nil
}

// Create inserts a program entry and its speaker links.
func (r *SessionRepository) Create(ctx context.Context, req model.CreateSessionRequest) (*model.Session, error) {
	now := time.Now().UTC()
	s := &model.Session{
		ID:               uuid.New(),
		EventID:          req.EventID,
		Title:            req.Title,
		Description:      req.Description,
		DateStart:        req.DateStart,
		DateEnd:          req.DateEnd,
		LocationID:       req.LocationID,
		Type:             req.Type,
		Capacity:         req.Capacity,
		ApprovalRequired: req.ApprovalRequired,
		Status:           model.SessionActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (id, event_id, title, description, date_start, date_end,
		     location_id, type, capacity, registered_count, approval_required, status,
		     created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11, $12, $13)`,
		s.ID, s.EventID, s.Title, s.Description, s.DateStart, s.DateEnd,
		s.LocationID, s.Type, s.Capacity, s.ApprovalRequired, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	if err := replaceSpeakerLinks(ctx, tx, s.ID, req.SpeakerIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return s, nil
}

func replaceSpeakerLinks(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, speakerIDs []uuid.UUID) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM session_speakers WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear speaker links: %w", err)
	}
	for _, speakerID := range speakerIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO session_speakers (session_id, speaker_id) VALUES ($1, $2)`,
			sessionID, speakerID); err != nil {
			return fmt.Errorf("link speaker %s: %w", speakerID, err)
		}
	}
	return nil
}

// GetByID returns one session with its location name and speakers.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	s, err := scanSession(r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM sessions s LEFT JOIN locations l ON l.id = s.location_id
		 WHERE s.id = $1`, id))
	if err != nil {
		return nil, err
	}
	speakers, err := r.loadSpeakers(ctx, []uuid.UUID{s.ID})
	if err != nil {
		return nil, err
	}
	s.Speakers = speakers[s.ID]
	return s, nil
}

// ListByEvent returns an event's program entries, filtered and ordered by
// start time.
func (r *SessionRepository) ListByEvent(ctx context.Context, eventID uuid.UUID, filter model.SessionFilter) ([]model.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM sessions s LEFT JOIN locations l ON l.id = s.location_id
		WHERE s.event_id = $1`
	args := []any{eventID}

	if filter.Day != nil {
		query += fmt.Sprintf(" AND s.date_start >= $%d AND s.date_start < $%d", len(args)+1, len(args)+2)
		day := filter.Day.Truncate(24 * time.Hour)
		args = append(args, day, day.Add(24*time.Hour))
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND s.type = $%d", len(args)+1)
		args = append(args, filter.Type)
	}
	if filter.LocationID != nil {
		query += fmt.Sprintf(" AND s.location_id = $%d", len(args)+1)
		args = append(args, *filter.LocationID)
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (s.title ILIKE $%d OR s.description ILIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.AvailableOnly {
		query += " AND (s.capacity IS NULL OR s.registered_count < s.capacity)"
	}
	query += " ORDER BY s.date_start ASC NULLS LAST"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	var ids []uuid.UUID
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	speakers, err := r.loadSpeakers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].Speakers = speakers[sessions[i].ID]
	}
	return sessions, nil
}

func (r *SessionRepository) loadSpeakers(ctx context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID][]model.SessionSpeaker, error) {
	out := make(map[uuid.UUID][]model.SessionSpeaker)
	if len(sessionIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT ss.session_id, sp.id, sp.name, sp.position, sp.company, sp.photo_url
		 FROM session_speakers ss
		 JOIN speakers sp ON sp.id = ss.speaker_id
		 WHERE ss.session_id = ANY($1)
		 ORDER BY sp.name`,
		sessionIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("load session speakers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sessionID uuid.UUID
		var sp model.SessionSpeaker
		if err := rows.Scan(&sessionID, &sp.ID, &sp.Name, &sp.Position, &sp.Company, &sp.PhotoURL); err != nil {
			return nil, fmt.Errorf("scan session speaker: %w", err)
		}
		out[sessionID] = append(out[sessionID], sp)
	}
	return out, rows.Err()
}

// Update applies the non-nil fields of req. Capacity and the counter are
// excluded on purpose; see SetCapacity and AdmissionStore.
func (r *SessionRepository) Update(ctx context.Context, id uuid.UUID, req model.UpdateSessionRequest) (*model.Session, error) {
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		s.Title = *req.Title
	}
	if req.Description != nil {
		s.Description = *req.Description
	}
	if req.DateStart != nil {
		s.DateStart = req.DateStart
	}
	if req.DateEnd != nil {
		s.DateEnd = req.DateEnd
	}
	if req.LocationID != nil {
		s.LocationID = req.LocationID
	}
	if req.Type != nil {
		s.Type = *req.Type
	}
	if req.ApprovalRequired != nil {
		s.ApprovalRequired = *req.ApprovalRequired
	}
	if req.Status != nil {
		s.Status = model.SessionStatus(*req.Status)
	}
	s.UpdatedAt = time.Now().UTC()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`UPDATE sessions
		 SET title = $2, description = $3, date_start = $4, date_end = $5, location_id = $6,
		     type = $7, approval_required = $8, status = $9, updated_at = $10
		 WHERE id = $1`,
		s.ID, s.Title, s.Description, s.DateStart, s.DateEnd, s.LocationID,
		s.Type, s.ApprovalRequired, s.Status, s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if req.SpeakerIDs != nil {
		if err := replaceSpeakerLinks(ctx, tx, s.ID, req.SpeakerIDs); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return r.GetByID(ctx, id)
}

// SetCapacity changes a session's seat limit. The guard refuses to shrink
// capacity below the seats already taken, keeping the capacity invariant
// intact without touching the counter.
func (r *SessionRepository) SetCapacity(ctx context.Context, id uuid.UUID, capacity *int) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE sessions
		 SET capacity = $2, updated_at = now()
		 WHERE id = $1 AND ($2::int IS NULL OR registered_count <= $2)`,
		id, capacity,
	)
	if err != nil {
		return fmt.Errorf("set capacity: %w", err)
	}
	if ct.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrCapacityBelowCount
	}
	return nil
}

// Delete removes a session and its ledger rows via cascade.
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Days returns the distinct days on which an event has program entries.
func (r *SessionRepository) Days(ctx context.Context, eventID uuid.UUID) ([]time.Time, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT date_trunc('day', date_start)
		 FROM sessions
		 WHERE event_id = $1 AND date_start IS NOT NULL
		 ORDER BY 1`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list session days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// Types returns the distinct non-empty session types of an event.
func (r *SessionRepository) Types(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT type FROM sessions
		 WHERE event_id = $1 AND type <> ''
		 ORDER BY type`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list session types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// ListIDsByEvent returns the session ids of an event. Used by the
// maintenance jobs to reconcile counters event by event.
func (r *SessionRepository) ListIDsByEvent(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM sessions WHERE event_id = $1`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list session ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
