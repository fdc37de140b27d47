package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventnav/program-service/internal/admission"
	"github.com/eventnav/program-service/internal/cache"
	"github.com/eventnav/program-service/internal/model"
	"github.com/eventnav/program-service/internal/repository"
)

// RegistrationLedger is the read side of the registration ledger.
// *repository.RegistrationRepository implements it.
type RegistrationLedger interface {
	FindByUser(ctx context.Context, userID uuid.UUID, eventID *uuid.UUID) ([]model.Registration, error)
	FindBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Registration, error)
	FindPair(ctx context.Context, sessionID, userID uuid.UUID) (*model.Registration, error)
}

// RegistrationService fronts the admission controller with the read-side
// ledger queries and user-facing response messages. All seat mutations go
// through the controller; this layer never touches counters itself.
type RegistrationService struct {
	admission *admission.Controller
	ledger    RegistrationLedger
	sessions  *repository.SessionRepository
	cache     *cache.Cache
	log       *zap.Logger
}

func NewRegistrationService(
	ctrl *admission.Controller,
	ledger RegistrationLedger,
	sessions *repository.SessionRepository,
	c *cache.Cache,
	log *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		admission: ctrl,
		ledger:    ledger,
		sessions:  sessions,
		cache:     c,
		log:       log,
	}
}

// Register books a seat for the user.
func (s *RegistrationService) Register(ctx context.Context, sessionID, userID uuid.UUID) (*model.RegisterResponse, error) {
	res, err := s.admission.Register(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	s.invalidateSession(ctx, sessionID)

	msg := "You are registered."
	if res.Status == model.RegistrationPending {
		msg = "Your registration is awaiting approval."
	}
	return &model.RegisterResponse{
		RegistrationID: res.RegistrationID,
		Status:         res.Status,
		Message:        msg,
	}, nil
}

// Cancel frees the user's seat.
func (s *RegistrationService) Cancel(ctx context.Context, sessionID, userID uuid.UUID) (*model.CancelResponse, error) {
	if err := s.admission.Cancel(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	s.invalidateSession(ctx, sessionID)
	return &model.CancelResponse{OK: true, Message: "Your registration is cancelled."}, nil
}

// Approve confirms a pending registration.
func (s *RegistrationService) Approve(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error) {
	reg, err := s.admission.Approve(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	s.invalidateSession(ctx, reg.SessionID)
	return reg, nil
}

// Reconcile recomputes one session's seat counter from the ledger and
// returns the corrected value.
func (s *RegistrationService) Reconcile(ctx context.Context, sessionID uuid.UUID) (int, error) {
	count, err := s.admission.Reconcile(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	s.invalidateSession(ctx, sessionID)
	return count, nil
}

// MyRegistrations lists the user's registrations, optionally scoped to
// one event.
func (s *RegistrationService) MyRegistrations(ctx context.Context, userID uuid.UUID, eventID *uuid.UUID) ([]model.Registration, error) {
	return s.ledger.FindByUser(ctx, userID, eventID)
}

// SessionRegistrations lists every registration of a session, for admins.
func (s *RegistrationService) SessionRegistrations(ctx context.Context, sessionID uuid.UUID) ([]model.Registration, error) {
	return s.ledger.FindBySession(ctx, sessionID)
}

// Status returns the user's registration for the session, or nil when
// none exists. An absent row is a normal answer here, not an error.
func (s *RegistrationService) Status(ctx context.Context, sessionID, userID uuid.UUID) (*model.Registration, error) {
	reg, err := s.ledger.FindPair(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return reg, nil
}

// invalidateSession drops the cached session detail and its event's
// program listing; both embed the seat counter.
func (s *RegistrationService) invalidateSession(ctx context.Context, sessionID uuid.UUID) {
	if s.cache == nil {
		return
	}
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		s.log.Warn("cache invalidation lookup failed",
			zap.String("session_id", sessionID.String()), zap.Error(err))
		return
	}
	s.cache.Invalidate(ctx, sessionKey(sessionID), sessionsKey(sess.EventID))
}
