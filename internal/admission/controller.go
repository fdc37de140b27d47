// Package admission implements the capacity-bounded admission control
// core: race-free, idempotent registration of users for sessions with
// optional seat limits.
//
// The invariant the package exists to uphold: a session's
// registered_count never exceeds its capacity, and always equals the
// number of ledger rows in a seat-holding status after every committed
// call. Both halves are enforced by the conditional-write primitives of
// the Store, not by periodic correction.
package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventnav/program-service/internal/model"
)

const (
	defaultMaxRetries      = 4
	defaultInitialInterval = 20 * time.Millisecond
	defaultMaxInterval     = 250 * time.Millisecond
)

// Controller orchestrates Register, Cancel and Approve. It is safe for
// concurrent use; serialization happens per session inside the store's
// conditional writes, so different sessions never contend.
type Controller struct {
	store      Store
	log        *zap.Logger
	maxRetries uint64
	clock      func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxRetries bounds how often a transient conflict is retried before
// ErrConflict surfaces to the caller.
func WithMaxRetries(n uint64) Option {
	return func(c *Controller) { c.maxRetries = n }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.clock = now }
}

// NewController constructs a Controller around a transactional store.
func NewController(store Store, log *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:      store,
		log:        log,
		maxRetries: defaultMaxRetries,
		clock:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterResult reports the outcome of a successful Register call.
type RegisterResult struct {
	RegistrationID uuid.UUID
	Status         model.RegistrationStatus
	Reactivated    bool
}

// Register admits userID into sessionID, creating a new ledger row or
// reactivating a previously cancelled one. The capacity check and the
// counter increment are one atomic store operation, so capacity can
// never be overshot regardless of concurrency.
func (c *Controller) Register(ctx context.Context, sessionID, userID uuid.UUID) (*RegisterResult, error) {
	var res *RegisterResult
	err := c.retry(ctx, "register", func() error {
		return c.store.InTx(ctx, func(tx Tx) error {
			r, err := c.register(ctx, tx, sessionID, userID)
			if err != nil {
				return err
			}
			res = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Controller) register(ctx context.Context, tx Tx, sessionID, userID uuid.UUID) (*RegisterResult, error) {
	info, err := tx.SessionInfo(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if info.Status != model.SessionActive {
		return nil, ErrSessionClosed
	}

	existing, err := tx.FindByPair(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}

	now := c.clock()
	status := admittedStatus(info.ApprovalRequired)
	var approvedAt *time.Time
	if status == model.RegistrationConfirmed {
		approvedAt = &now
	}

	if existing != nil {
		if existing.Status.Active() {
			return nil, ErrAlreadyRegistered
		}
		if !canTransition(existing.Status, status) {
			return nil, fmt.Errorf("reactivate %s -> %s: %w", existing.Status, status, ErrInvalidTransition)
		}
		// Reactivation: same capacity discipline as a fresh registration,
		// reusing the existing row so the pair stays unique forever.
		ok, err := tx.AcquireSeat(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("acquire seat: %w", err)
		}
		if !ok {
			return nil, ErrSessionFull
		}
		ok, err = tx.ReactivateRegistration(ctx, existing.ID, status, now, approvedAt)
		if err != nil {
			return nil, fmt.Errorf("reactivate registration: %w", err)
		}
		if !ok {
			// The row left the cancelled state under our feet. Abort the
			// transaction (undoing the increment) and retry; the retry
			// will observe the concurrent outcome.
			return nil, fmt.Errorf("registration %s no longer cancelled: %w", existing.ID, ErrConflict)
		}
		return &RegisterResult{RegistrationID: existing.ID, Status: status, Reactivated: true}, nil
	}

	if !canTransition(statusAbsent, status) {
		return nil, fmt.Errorf("admit absent -> %s: %w", status, ErrInvalidTransition)
	}
	ok, err := tx.AcquireSeat(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("acquire seat: %w", err)
	}
	if !ok {
		return nil, ErrSessionFull
	}
	reg := &model.Registration{
		ID:           uuid.New(),
		SessionID:    sessionID,
		UserID:       userID,
		Status:       status,
		RegisteredAt: now,
		ApprovedAt:   approvedAt,
	}
	if err := tx.InsertRegistration(ctx, reg); err != nil {
		// A concurrent first registration for the same pair trips the
		// uniqueness constraint; the store maps it to ErrAlreadyRegistered
		// and the rollback releases the seat we just took.
		return nil, err
	}
	return &RegisterResult{RegistrationID: reg.ID, Status: status}, nil
}

// Cancel releases userID's seat in sessionID. The row is kept with status
// cancelled so a later Register reactivates it instead of duplicating.
func (c *Controller) Cancel(ctx context.Context, sessionID, userID uuid.UUID) error {
	return c.retry(ctx, "cancel", func() error {
		return c.store.InTx(ctx, func(tx Tx) error {
			return c.cancel(ctx, tx, sessionID, userID)
		})
	})
}

func (c *Controller) cancel(ctx context.Context, tx Tx, sessionID, userID uuid.UUID) error {
	existing, err := tx.FindByPair(ctx, sessionID, userID)
	if err != nil {
		return fmt.Errorf("find registration: %w", err)
	}
	if existing == nil {
		return ErrNotRegistered
	}
	if !canTransition(existing.Status, model.RegistrationCancelled) {
		return ErrAlreadyCancelled
	}
	ok, err := tx.CancelRegistration(ctx, existing.ID)
	if err != nil {
		return fmt.Errorf("cancel registration: %w", err)
	}
	if !ok {
		return fmt.Errorf("registration %s changed concurrently: %w", existing.ID, ErrConflict)
	}
	if err := tx.ReleaseSeat(ctx, sessionID); err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	return nil
}

// Approve confirms a pending registration. The seat was already counted
// when the registration entered pending, so the counter is not touched.
func (c *Controller) Approve(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error) {
	var out *model.Registration
	err := c.retry(ctx, "approve", func() error {
		return c.store.InTx(ctx, func(tx Tx) error {
			reg, err := tx.FindByID(ctx, registrationID)
			if err != nil {
				return fmt.Errorf("find registration: %w", err)
			}
			if reg == nil {
				return ErrNotFound
			}
			if reg.Status != model.RegistrationPending {
				return ErrInvalidTransition
			}
			now := c.clock()
			ok, err := tx.ApproveRegistration(ctx, reg.ID, now)
			if err != nil {
				return fmt.Errorf("approve registration: %w", err)
			}
			if !ok {
				return fmt.Errorf("registration %s changed concurrently: %w", reg.ID, ErrConflict)
			}
			reg.Status = model.RegistrationConfirmed
			reg.ApprovedAt = &now
			out = reg
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reconcile recomputes a session's registered_count from its ledger rows.
// Administrative repair for out-of-band data fixes; it runs under the
// same transactional discipline as the request-path operations.
func (c *Controller) Reconcile(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var count int
	err := c.retry(ctx, "reconcile", func() error {
		return c.store.InTx(ctx, func(tx Tx) error {
			n, err := tx.RecountSeats(ctx, sessionID)
			if err != nil {
				return err
			}
			count = n
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// retry runs op, retrying transient conflicts with bounded exponential
// backoff. Business-rule errors pass through immediately.
func (c *Controller) retry(ctx context.Context, name string, op func() error) error {
	attempt := 0
	wrapped := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if Retryable(err) {
			c.log.Debug("admission conflict, retrying",
				zap.String("op", name),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = defaultInitialInterval
	bo.MaxInterval = defaultMaxInterval
	err := backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx))
	if err != nil && Retryable(err) {
		c.log.Warn("admission retries exhausted",
			zap.String("op", name),
			zap.Int("attempts", attempt))
	}
	return err
}
