package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventnav/program-service/internal/model"
	"github.com/eventnav/program-service/internal/repository"
	"github.com/eventnav/program-service/internal/service"
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

func checkRequest(t *testing.T, ledger service.RegistrationLedger) *httptest.ResponseRecorder {
	t.Helper()
	svc := service.NewRegistrationService(nil, ledger, nil, nil, zap.NewNop())
	h := NewRegistrationHandler(svc)

	r := chi.NewRouter()
	r.Get("/registrations/{id}/check", h.Status)

	req := httptest.NewRequest(http.MethodGet, "/registrations/"+uuid.NewString()+"/check", nil)
	user := &model.User{ID: uuid.New(), TelegramID: 42}
	req = req.WithContext(context.WithValue(req.Context(), userContextKey, user))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCheckUnregisteredUserIsOK(t *testing.T) {
	rec := checkRequest(t, &stubLedger{pairErr: repository.ErrNotFound})

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Registered bool `json:"registered"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Registered)
}

func TestCheckRegisteredUser(t *testing.T) {
	reg := &model.Registration{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		UserID:    uuid.New(),
		Status:    model.RegistrationConfirmed,
	}
	rec := checkRequest(t, &stubLedger{pair: reg})

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Registered   bool                `json:"registered"`
		Registration *model.Registration `json:"registration"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Registered)
	require.NotNil(t, body.Registration)
	assert.Equal(t, reg.ID, body.Registration.ID)
}
