package admission

import "errors"

// Business-rule outcomes. These are returned to the caller as-is, never
// retried internally and never logged as bugs.
var (
	// ErrNotFound is returned when the session (or registration) does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrSessionClosed is returned when the session is cancelled or finished.
	ErrSessionClosed = errors.New("session is not open for registration")

	// ErrAlreadyRegistered is returned when the user already holds a seat.
	ErrAlreadyRegistered = errors.New("already registered for this session")

	// ErrSessionFull is returned when the conditional seat acquisition
	// affects zero rows: every seat is taken.
	ErrSessionFull = errors.New("session is fully booked")

	// ErrNotRegistered is returned by Cancel when no registration exists.
	ErrNotRegistered = errors.New("not registered for this session")

	// ErrAlreadyCancelled is returned by Cancel on a cancelled registration.
	ErrAlreadyCancelled = errors.New("registration already cancelled")

	// ErrInvalidTransition is returned by Approve on a non-pending registration.
	ErrInvalidTransition = errors.New("registration is not pending approval")
)

// ErrConflict marks a transient store conflict (serialization failure,
// deadlock, a guarded update losing to a concurrent writer). The
// controller retries these with backoff; if the attempt limit is
// exhausted the error surfaces so the caller may safely re-issue the
// request.
var ErrConflict = errors.New("transient storage conflict")

// Retryable reports whether err may succeed on a retry.
func Retryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
