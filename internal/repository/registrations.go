package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventnav/program-service/internal/model"
)

// RegistrationRepository exposes the read side of the ledger for listing
// and reporting. All writes go through AdmissionStore inside the
// controller's transactions; nothing here mutates rows.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// FindByUser returns a user's registrations, optionally limited to one
// event, newest first. Session titles are joined in for display.
func (r *RegistrationRepository) FindByUser(ctx context.Context, userID uuid.UUID, eventID *uuid.UUID) ([]model.Registration, error) {
	query := `SELECT r.id, r.session_id, r.user_id, r.status, r.registered_at, r.approved_at, s.title
		FROM registrations r
		JOIN sessions s ON s.id = r.session_id
		WHERE r.user_id = $1`
	args := []any{userID}
	if eventID != nil {
		query += " AND s.event_id = $2"
		args = append(args, *eventID)
	}
	query += " ORDER BY r.registered_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations by user: %w", err)
	}
	defer rows.Close()
	return collectRegistrations(rows, true)
}

// FindBySession returns a session's registrations in registration order.
func (r *RegistrationRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, user_id, status, registered_at, approved_at
		 FROM registrations
		 WHERE session_id = $1
		 ORDER BY registered_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations by session: %w", err)
	}
	defer rows.Close()
	return collectRegistrations(rows, false)
}

// FindPair returns the registration for (session, user) or ErrNotFound.
func (r *RegistrationRepository) FindPair(ctx context.Context, sessionID, userID uuid.UUID) (*model.Registration, error) {
	var reg model.Registration
	err := r.db.QueryRow(ctx,
		`SELECT id, session_id, user_id, status, registered_at, approved_at
		 FROM registrations WHERE session_id = $1 AND user_id = $2`,
		sessionID, userID,
	).Scan(&reg.ID, &reg.SessionID, &reg.UserID, &reg.Status, &reg.RegisteredAt, &reg.ApprovedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &reg, nil
}

func collectRegistrations(rows pgx.Rows, withTitle bool) ([]model.Registration, error) {
	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		dest := []any{&reg.ID, &reg.SessionID, &reg.UserID, &reg.Status, &reg.RegisteredAt, &reg.ApprovedAt}
		if withTitle {
			dest = append(dest, &reg.SessionTitle)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
