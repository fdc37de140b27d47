package admission

import (
	"context"
	"time"

	"github.com/eventnav/program-service/internal/model"
	"github.com/google/uuid"
)

// SessionInfo is the catalog view the controller needs to admit a user:
// identity, seat limit, lifecycle status, and approval policy. The
// controller never mutates catalog fields other than the seat counter,
// and that only through the Tx primitives below.
type SessionInfo struct {
	ID               uuid.UUID
	Capacity         *int // nil = unlimited
	RegisteredCount  int
	Status           model.SessionStatus
	ApprovalRequired bool
}

// Store is the transactional storage the controller drives. Every
// controller operation runs inside exactly one InTx call; an error from
// fn aborts the whole transaction, so no partial counter/ledger mutation
// is ever visible to another caller.
//
// Implementations must map transient failures (serialization errors,
// deadlocks) to ErrConflict and a (session_id, user_id) uniqueness
// violation to ErrAlreadyRegistered.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of statements available inside one admission transaction.
//
// AcquireSeat is the serialization point of the whole subsystem: the
// capacity check and the counter increment are a single conditional
// write evaluated by the store, so two concurrent callers can never both
// observe a free seat and both take it.
type Tx interface {
	// SessionInfo reads the session's admission metadata, or ErrNotFound.
	SessionInfo(ctx context.Context, sessionID uuid.UUID) (*SessionInfo, error)

	// FindByPair returns the registration row for (session, user), or
	// (nil, nil) when no row exists.
	FindByPair(ctx context.Context, sessionID, userID uuid.UUID) (*model.Registration, error)

	// AcquireSeat increments registered_count only if the session still
	// has room (capacity IS NULL OR registered_count < capacity).
	// It reports whether the increment applied.
	AcquireSeat(ctx context.Context, sessionID uuid.UUID) (bool, error)

	// ReleaseSeat decrements registered_count. The decrement needs no
	// guard: it only moves the counter toward a more permissive state.
	ReleaseSeat(ctx context.Context, sessionID uuid.UUID) error

	// InsertRegistration creates a fresh ledger row.
	InsertRegistration(ctx context.Context, reg *model.Registration) error

	// ReactivateRegistration flips a cancelled row back to status and
	// refreshes its timestamps, contingent on the row still being
	// cancelled. It reports whether the update applied.
	ReactivateRegistration(ctx context.Context, regID uuid.UUID, status model.RegistrationStatus, registeredAt time.Time, approvedAt *time.Time) (bool, error)

	// CancelRegistration sets a row to cancelled, contingent on it still
	// holding a seat (pending or confirmed).
	CancelRegistration(ctx context.Context, regID uuid.UUID) (bool, error)

	// FindByID returns a registration row by primary key, or (nil, nil).
	FindByID(ctx context.Context, regID uuid.UUID) (*model.Registration, error)

	// ApproveRegistration confirms a row and stamps approved_at,
	// contingent on the row still being pending.
	ApproveRegistration(ctx context.Context, regID uuid.UUID, approvedAt time.Time) (bool, error)

	// RecountSeats recomputes registered_count from the ledger rows that
	// hold a seat and writes it back in one statement, returning the
	// corrected count. Repair tool, never on the request path.
	RecountSeats(ctx context.Context, sessionID uuid.UUID) (int, error)
}
