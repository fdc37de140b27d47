package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventnav/program-service/internal/model"
	"github.com/eventnav/program-service/internal/repository"
)

type stubLedger struct {
	pair    *model.Registration
	pairErr error
}

func (s *stubLedger) FindByUser(_ context.Context, _ uuid.UUID, _ *uuid.UUID) ([]model.Registration, error) {
	return nil, nil
}

func (s *stubLedger) FindBySession(_ context.Context, _ uuid.UUID) ([]model.Registration, error) {
	return nil, nil
}

func (s *stubLedger) FindPair(_ context.Context, _, _ uuid.UUID) (*model.Registration, error) {
	return s.pair, s.pairErr
}

func newStatusService(ledger RegistrationLedger) *RegistrationService {
	return NewRegistrationService(nil, ledger, nil, nil, zap.NewNop())
}

func TestStatusAbsentIsNotAnError(t *testing.T) {
	svc := newStatusService(&stubLedger{pairErr: repository.ErrNotFound})

	reg, err := svc.Status(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestStatusReturnsExistingRegistration(t *testing.T) {
	want := &model.Registration{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		UserID:    uuid.New(),
		Status:    model.RegistrationConfirmed,
	}
	svc := newStatusService(&stubLedger{pair: want})

	reg, err := svc.Status(context.Background(), want.SessionID, want.UserID)
	require.NoError(t, err)
	assert.Equal(t, want, reg)
}

func TestStatusPropagatesStorageErrors(t *testing.T) {
	boom := errors.New("connection reset")
	svc := newStatusService(&stubLedger{pairErr: boom})

	_, err := svc.Status(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, boom)
}
