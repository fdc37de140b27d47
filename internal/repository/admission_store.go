// Package repository implements all database access for the platform.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventnav/program-service/internal/admission"
	"github.com/eventnav/program-service/internal/model"
)

// Postgres SQLSTATEs the admission retry loop cares about.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// registrationPairConstraint guards one ledger row per (session, user).
const registrationPairConstraint = "registrations_session_user_key"

// AdmissionStore implements admission.Store on a pgx connection pool.
//
// The serialization point is the conditional UPDATE in AcquireSeat: the
// capacity comparison and the increment are one statement, evaluated by
// Postgres under the session row's lock, so concurrent registrations for
// the same session queue up on that row and re-check the guard against
// the committed value. No SELECT ... FOR UPDATE is needed.
type AdmissionStore struct {
	db *pgxpool.Pool
}

// NewAdmissionStore constructs an AdmissionStore.
func NewAdmissionStore(db *pgxpool.Pool) *AdmissionStore {
	return &AdmissionStore{db: db}
}

// InTx runs fn inside a single transaction. Any error from fn rolls the
// whole transaction back; store-level failures are classified so the
// controller can tell transient conflicts from business outcomes.
func (s *AdmissionStore) InTx(ctx context.Context, fn func(tx admission.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return classifyPgError(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&admissionTx{tx: tx}); err != nil {
		return classifyPgError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classifyPgError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// classifyPgError maps Postgres failure codes onto the admission error
// taxonomy. Anything it does not recognize passes through unchanged.
func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected:
		return fmt.Errorf("%s: %w", pgErr.Message, admission.ErrConflict)
	case pgUniqueViolation:
		if pgErr.ConstraintName == registrationPairConstraint {
			return admission.ErrAlreadyRegistered
		}
	}
	return err
}

type admissionTx struct {
	tx pgx.Tx
}

func (t *admissionTx) SessionInfo(ctx context.Context, sessionID uuid.UUID) (*admission.SessionInfo, error) {
	var info admission.SessionInfo
	err := t.tx.QueryRow(ctx,
		`SELECT id, capacity, registered_count, status, approval_required
		 FROM sessions WHERE id = $1`,
		sessionID,
	).Scan(&info.ID, &info.Capacity, &info.RegisteredCount, &info.Status, &info.ApprovalRequired)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, admission.ErrNotFound
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	return &info, nil
}

func (t *admissionTx) FindByPair(ctx context.Context, sessionID, userID uuid.UUID) (*model.Registration, error) {
	var reg model.Registration
	err := t.tx.QueryRow(ctx,
		`SELECT id, session_id, user_id, status, registered_at, approved_at
		 FROM registrations WHERE session_id = $1 AND user_id = $2`,
		sessionID, userID,
	).Scan(&reg.ID, &reg.SessionID, &reg.UserID, &reg.Status, &reg.RegisteredAt, &reg.ApprovedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &reg, nil
}

// AcquireSeat is the conditional write that makes overbooking impossible:
// increment only while a seat remains, with the guard and the increment
// evaluated atomically by the database.
func (t *admissionTx) AcquireSeat(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	ct, err := t.tx.Exec(ctx,
		`UPDATE sessions
		 SET registered_count = registered_count + 1, updated_at = now()
		 WHERE id = $1 AND (capacity IS NULL OR registered_count < capacity)`,
		sessionID,
	)
	if err != nil {
		return false, fmt.Errorf("acquire seat: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (t *admissionTx) ReleaseSeat(ctx context.Context, sessionID uuid.UUID) error {
	// GREATEST keeps out-of-band damage from driving the counter negative;
	// Reconcile is the real repair for such states.
	_, err := t.tx.Exec(ctx,
		`UPDATE sessions
		 SET registered_count = GREATEST(registered_count - 1, 0), updated_at = now()
		 WHERE id = $1`,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	return nil
}

func (t *admissionTx) InsertRegistration(ctx context.Context, reg *model.Registration) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO registrations (id, session_id, user_id, status, registered_at, approved_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.ID, reg.SessionID, reg.UserID, reg.Status, reg.RegisteredAt, reg.ApprovedAt,
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (t *admissionTx) ReactivateRegistration(ctx context.Context, regID uuid.UUID, status model.RegistrationStatus, registeredAt time.Time, approvedAt *time.Time) (bool, error) {
	ct, err := t.tx.Exec(ctx,
		`UPDATE registrations
		 SET status = $2, registered_at = $3, approved_at = $4
		 WHERE id = $1 AND status = 'cancelled'`,
		regID, status, registeredAt, approvedAt,
	)
	if err != nil {
		return false, fmt.Errorf("reactivate registration: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (t *admissionTx) CancelRegistration(ctx context.Context, regID uuid.UUID) (bool, error) {
	ct, err := t.tx.Exec(ctx,
		`UPDATE registrations
		 SET status = 'cancelled'
		 WHERE id = $1 AND status IN ('pending', 'confirmed')`,
		regID,
	)
	if err != nil {
		return false, fmt.Errorf("cancel registration: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (t *admissionTx) FindByID(ctx context.Context, regID uuid.UUID) (*model.Registration, error) {
	var reg model.Registration
	err := t.tx.QueryRow(ctx,
		`SELECT id, session_id, user_id, status, registered_at, approved_at
		 FROM registrations WHERE id = $1`,
		regID,
	).Scan(&reg.ID, &reg.SessionID, &reg.UserID, &reg.Status, &reg.RegisteredAt, &reg.ApprovedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &reg, nil
}

func (t *admissionTx) ApproveRegistration(ctx context.Context, regID uuid.UUID, approvedAt time.Time) (bool, error) {
	ct, err := t.tx.Exec(ctx,
		`UPDATE registrations
		 SET status = 'confirmed', approved_at = $2
		 WHERE id = $1 AND status = 'pending'`,
		regID, approvedAt,
	)
	if err != nil {
		return false, fmt.Errorf("approve registration: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (t *admissionTx) RecountSeats(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx,
		`UPDATE sessions s
		 SET registered_count = sub.n, updated_at = now()
		 FROM (
		     SELECT COUNT(*) AS n FROM registrations
		     WHERE session_id = $1 AND status IN ('pending', 'confirmed')
		 ) sub
		 WHERE s.id = $1
		 RETURNING s.registered_count`,
		sessionID,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, admission.ErrNotFound
		}
		return 0, fmt.Errorf("recount seats: %w", err)
	}
	return count, nil
}
