package admission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eventnav/program-service/internal/model"
)

// memStore is an in-memory Store with real transaction semantics: each
// InTx works on a snapshot that only replaces the shared state on
// success. A single mutex serializes transactions, which is exactly the
// serialization guarantee the production store provides per session row.
type memStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*SessionInfo
	regs     map[uuid.UUID]*model.Registration
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[uuid.UUID]*SessionInfo),
		regs:     make(map[uuid.UUID]*model.Registration),
	}
}

func (s *memStore) addSession(capacity *int, status model.SessionStatus, approval bool) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.sessions[id] = &SessionInfo{ID: id, Capacity: capacity, Status: status, ApprovalRequired: approval}
	return id
}

func (s *memStore) session(id uuid.UUID) SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.sessions[id]
}

func (s *memStore) setCount(id uuid.UUID, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id].RegisteredCount = n
}

func (s *memStore) registrations(sessionID uuid.UUID) []model.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Registration
	for _, r := range s.regs {
		if r.SessionID == sessionID {
			out = append(out, *r)
		}
	}
	return out
}

func (s *memStore) InTx(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		sessions: make(map[uuid.UUID]*SessionInfo, len(s.sessions)),
		regs:     make(map[uuid.UUID]*model.Registration, len(s.regs)),
	}
	for id, info := range s.sessions {
		cp := *info
		tx.sessions[id] = &cp
	}
	for id, reg := range s.regs {
		cp := *reg
		tx.regs[id] = &cp
	}

	if err := fn(tx); err != nil {
		return err
	}
	s.sessions = tx.sessions
	s.regs = tx.regs
	return nil
}

type memTx struct {
	sessions map[uuid.UUID]*SessionInfo
	regs     map[uuid.UUID]*model.Registration
}

func (t *memTx) SessionInfo(_ context.Context, sessionID uuid.UUID) (*SessionInfo, error) {
	info, ok := t.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *info
	return &cp, nil
}

func (t *memTx) FindByPair(_ context.Context, sessionID, userID uuid.UUID) (*model.Registration, error) {
	for _, r := range t.regs {
		if r.SessionID == sessionID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *memTx) AcquireSeat(_ context.Context, sessionID uuid.UUID) (bool, error) {
	info, ok := t.sessions[sessionID]
	if !ok {
		return false, ErrNotFound
	}
	if info.Capacity != nil && info.RegisteredCount >= *info.Capacity {
		return false, nil
	}
	info.RegisteredCount++
	return true, nil
}

func (t *memTx) ReleaseSeat(_ context.Context, sessionID uuid.UUID) error {
	info, ok := t.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	if info.RegisteredCount > 0 {
		info.RegisteredCount--
	}
	return nil
}

func (t *memTx) InsertRegistration(_ context.Context, reg *model.Registration) error {
	for _, r := range t.regs {
		if r.SessionID == reg.SessionID && r.UserID == reg.UserID {
			return ErrAlreadyRegistered
		}
	}
	cp := *reg
	t.regs[reg.ID] = &cp
	return nil
}

func (t *memTx) ReactivateRegistration(_ context.Context, regID uuid.UUID, status model.RegistrationStatus, registeredAt time.Time, approvedAt *time.Time) (bool, error) {
	r, ok := t.regs[regID]
	if !ok || r.Status != model.RegistrationCancelled {
		return false, nil
	}
	r.Status = status
	r.RegisteredAt = registeredAt
	r.ApprovedAt = approvedAt
	return true, nil
}

func (t *memTx) CancelRegistration(_ context.Context, regID uuid.UUID) (bool, error) {
	r, ok := t.regs[regID]
	if !ok || !r.Status.Active() {
		return false, nil
	}
	r.Status = model.RegistrationCancelled
	return true, nil
}

func (t *memTx) FindByID(_ context.Context, regID uuid.UUID) (*model.Registration, error) {
	r, ok := t.regs[regID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (t *memTx) ApproveRegistration(_ context.Context, regID uuid.UUID, approvedAt time.Time) (bool, error) {
	r, ok := t.regs[regID]
	if !ok || r.Status != model.RegistrationPending {
		return false, nil
	}
	r.Status = model.RegistrationConfirmed
	at := approvedAt
	r.ApprovedAt = &at
	return true, nil
}

func (t *memTx) RecountSeats(_ context.Context, sessionID uuid.UUID) (int, error) {
	info, ok := t.sessions[sessionID]
	if !ok {
		return 0, ErrNotFound
	}
	n := 0
	for _, r := range t.regs {
		if r.SessionID == sessionID && r.Status.Active() {
			n++
		}
	}
	info.RegisteredCount = n
	return n, nil
}

// flakyStore fails the first n transactions with a transient conflict.
type flakyStore struct {
	inner    Store
	mu       sync.Mutex
	failures int
}

func (s *flakyStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	fail := s.failures > 0
	if fail {
		s.failures--
	}
	s.mu.Unlock()
	if fail {
		return fmt.Errorf("serialization failure: %w", ErrConflict)
	}
	return s.inner.InTx(ctx, fn)
}
