package admission

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventnav/program-service/internal/model"
)

func intPtr(n int) *int { return &n }

func newTestController(store Store, opts ...Option) *Controller {
	return NewController(store, zap.NewNop(), opts...)
}

func TestRegisterNewConfirmed(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(intPtr(10), model.SessionActive, false)
	ctrl := newTestController(store)

	res, err := ctrl.Register(context.Background(), sessionID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationConfirmed, res.Status)
	assert.False(t, res.Reactivated)
	assert.Equal(t, 1, store.session(sessionID).RegisteredCount)

	regs := store.registrations(sessionID)
	require.Len(t, regs, 1)
	assert.NotNil(t, regs[0].ApprovedAt, "auto-approved registration must stamp approved_at")
}

func TestRegisterApprovalRequiredPending(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(intPtr(10), model.SessionActive, true)
	ctrl := newTestController(store)

	res, err := ctrl.Register(context.Background(), sessionID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationPending, res.Status)

	regs := store.registrations(sessionID)
	require.Len(t, regs, 1)
	assert.Nil(t, regs[0].ApprovedAt)
	// Pending already occupies a seat.
	assert.Equal(t, 1, store.session(sessionID).RegisteredCount)
}

func TestRegisterSessionNotFound(t *testing.T) {
	ctrl := newTestController(newMemStore())
	_, err := ctrl.Register(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterSessionClosed(t *testing.T) {
	store := newMemStore()
	ctrl := newTestController(store)

	for _, status := range []model.SessionStatus{model.SessionCancelled, model.SessionFinished} {
		sessionID := store.addSession(intPtr(10), status, false)
		_, err := ctrl.Register(context.Background(), sessionID, uuid.New())
		assert.ErrorIs(t, err, ErrSessionClosed)
		assert.Equal(t, 0, store.session(sessionID).RegisteredCount)
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(intPtr(10), model.SessionActive, false)
	ctrl := newTestController(store)
	userID := uuid.New()

	_, err := ctrl.Register(context.Background(), sessionID, userID)
	require.NoError(t, err)

	_, err = ctrl.Register(context.Background(), sessionID, userID)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, 1, store.session(sessionID).RegisteredCount)
	assert.Len(t, store.registrations(sessionID), 1)
}

func TestRegisterZeroCapacityAlwaysFull(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(intPtr(0), model.SessionActive, false)
	ctrl := newTestController(store)

	for i := 0; i < 5; i++ {
		_, err := ctrl.Register(context.Background(), sessionID, uuid.New())
		assert.ErrorIs(t, err, ErrSessionFull)
	}
	assert.Equal(t, 0, store.session(sessionID).RegisteredCount)
	assert.Empty(t, store.registrations(sessionID))
}

func TestRegisterUnlimitedCapacity(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(nil, model.SessionActive, false)
	ctrl := newTestController(store)

	const n = 64
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ctrl.Register(context.Background(), sessionID, uuid.New())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, n, store.session(sessionID).RegisteredCount)
}

// N concurrent registrations for C seats: exactly C succeed, the rest
// fail with ErrSessionFull, and the counter lands exactly on C.
func TestRegisterConcurrentNeverOverbooks(t *testing.T) {
	const capacity = 25
	const attempts = 100

	store := newMemStore()
	sessionID := store.addSession(intPtr(capacity), model.SessionActive, false)
	ctrl := newTestController(store)

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ctrl.Register(context.Background(), sessionID, uuid.New())
		}(i)
	}
	wg.Wait()

	succeeded, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case Retryable(err):
			t.Fatalf("unexpected conflict surfaced: %v", err)
		default:
			require.ErrorIs(t, err, ErrSessionFull)
			full++
		}
	}
	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, attempts-capacity, full)
	assert.Equal(t, capacity, store.session(sessionID).RegisteredCount)
	assert.Len(t, store.registrations(sessionID), capacity)
}

// Three users race for two seats: exactly two end up holding one.
func TestRegisterThreeUsersTwoSeats(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(intPtr(2), model.SessionActive, false)
	ctrl := newTestController(store)

	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	var wg sync.WaitGroup
	errs := make([]error, len(users))
	for i, u := range users {
		wg.Add(1)
		go func(i int, u uuid.UUID) {
			defer wg.Done()
			_, errs[i] = ctrl.Register(context.Background(), sessionID, u)
		}(i, u)
	}
	wg.Wait()

	confirmed, full := 0, 0
	for _, err := range errs {
		if err == nil {
			confirmed++
		} else {
			require.ErrorIs(t, err, ErrSessionFull)
			full++
		}
	}
	assert.Equal(t, 2, confirmed)
	assert.Equal(t, 1, full)
	assert.Equal(t, 2, store.session(sessionID).RegisteredCount)
}

func TestCancelAbsentAndDouble(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(intPtr(5), model.SessionActive, false)
	ctrl := newTestController(store)
	userID := uuid.New()

	err := ctrl.Cancel(context.Background(), sessionID, userID)
	assert.ErrorIs(t, err, ErrNotRegistered)

	_, err = ctrl.Register(context.Background(), sessionID, userID)
	require.NoError(t, err)

	require.NoError(t, ctrl.Cancel(context.Background(), sessionID, userID))
	assert.Equal(t, 0, store.session(sessionID).RegisteredCount)

	err = ctrl.Cancel(context.Background(), sessionID, userID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Equal(t, 0, store.session(sessionID).RegisteredCount)
}

// Register -> Cancel -> Register reuses the same ledger row, returns the
// pair to an active status, and leaves the counter with net delta zero
// relative to before the first Register.
func TestCancelThenRegisterReactivatesSameRow(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(intPtr(5), model.SessionActive, false)
	ctrl := newTestController(store)
	userID := uuid.New()

	first, err := ctrl.Register(context.Background(), sessionID, userID)
	require.NoError(t, err)
	require.NoError(t, ctrl.Cancel(context.Background(), sessionID, userID))

	second, err := ctrl.Register(context.Background(), sessionID, userID)
	require.NoError(t, err)
	assert.Equal(t, first.RegistrationID, second.RegistrationID, "reactivation must reuse the row")
	assert.True(t, second.Reactivated)
	assert.Equal(t, model.RegistrationConfirmed, second.Status)

	assert.Len(t, store.registrations(sessionID), 1)
	assert.Equal(t, 1, store.session(sessionID).RegisteredCount)
}

// A cancelled registration competes for seats like everyone else: if the
// session filled up in the meantime, reactivation fails SessionFull.
func TestReactivationRespectsCapacity(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(intPtr(1), model.SessionActive, false)
	ctrl := newTestController(store)
	first, second := uuid.New(), uuid.New()

	_, err := ctrl.Register(context.Background(), sessionID, first)
	require.NoError(t, err)
	require.NoError(t, ctrl.Cancel(context.Background(), sessionID, first))

	_, err = ctrl.Register(context.Background(), sessionID, second)
	require.NoError(t, err)

	_, err = ctrl.Register(context.Background(), sessionID, first)
	assert.ErrorIs(t, err, ErrSessionFull)
	assert.Equal(t, 1, store.session(sessionID).RegisteredCount)
}

func TestApprovePending(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(intPtr(5), model.SessionActive, true)
	ctrl := newTestController(store)

	res, err := ctrl.Register(context.Background(), sessionID, uuid.New())
	require.NoError(t, err)
	require.Equal(t, model.RegistrationPending, res.Status)
	countBefore := store.session(sessionID).RegisteredCount

	reg, err := ctrl.Approve(context.Background(), res.RegistrationID)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationConfirmed, reg.Status)
	require.NotNil(t, reg.ApprovedAt)
	// Approve never touches the counter: the seat was taken at pending.
	assert.Equal(t, countBefore, store.session(sessionID).RegisteredCount)
}

func TestApproveNonPendingFailsWithoutMutation(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(intPtr(5), model.SessionActive, false)
	ctrl := newTestController(store)

	res, err := ctrl.Register(context.Background(), sessionID, uuid.New())
	require.NoError(t, err)
	countBefore := store.session(sessionID).RegisteredCount

	_, err = ctrl.Approve(context.Background(), res.RegistrationID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, countBefore, store.session(sessionID).RegisteredCount)

	_, err = ctrl.Approve(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConflictRetriedThenSucceeds(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(intPtr(5), model.SessionActive, false)
	flaky := &flakyStore{inner: store, failures: 2}
	ctrl := newTestController(flaky, WithMaxRetries(4))

	res, err := ctrl.Register(context.Background(), sessionID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationConfirmed, res.Status)
	assert.Equal(t, 1, store.session(sessionID).RegisteredCount)
}

func TestConflictSurfacesAfterRetryBudget(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(intPtr(5), model.SessionActive, false)
	flaky := &flakyStore{inner: store, failures: 100}
	ctrl := newTestController(flaky, WithMaxRetries(2))

	_, err := ctrl.Register(context.Background(), sessionID, uuid.New())
	require.Error(t, err)
	assert.True(t, Retryable(err), "exhausted retries must surface as retryable conflict")
	// Nothing committed.
	assert.Equal(t, 0, store.session(sessionID).RegisteredCount)
}

func TestReconcileCorrectsDrift(t *testing.T) {
	store := newMemStore()
	sessionID := store.addSession(intPtr(10), model.SessionActive, false)
	ctrl := newTestController(store)

	for i := 0; i < 3; i++ {
		_, err := ctrl.Register(context.Background(), sessionID, uuid.New())
		require.NoError(t, err)
	}

	// Simulate out-of-band damage to the denormalized counter.
	store.setCount(sessionID, 9)

	n, err := ctrl.Reconcile(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, store.session(sessionID).RegisteredCount)
}
