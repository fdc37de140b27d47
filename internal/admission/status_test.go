package admission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventnav/program-service/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from model.RegistrationStatus
		to   model.RegistrationStatus
		ok   bool
	}{
		{"absent to confirmed", statusAbsent, model.RegistrationConfirmed, true},
		{"absent to pending", statusAbsent, model.RegistrationPending, true},
		{"absent to cancelled", statusAbsent, model.RegistrationCancelled, false},
		{"pending to confirmed", model.RegistrationPending, model.RegistrationConfirmed, true},
		{"pending to cancelled", model.RegistrationPending, model.RegistrationCancelled, true},
		{"confirmed to cancelled", model.RegistrationConfirmed, model.RegistrationCancelled, true},
		{"confirmed to pending", model.RegistrationConfirmed, model.RegistrationPending, false},
		{"cancelled to confirmed", model.RegistrationCancelled, model.RegistrationConfirmed, true},
		{"cancelled to pending", model.RegistrationCancelled, model.RegistrationPending, true},
		{"confirmed to confirmed", model.RegistrationConfirmed, model.RegistrationConfirmed, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, canTransition(tc.from, tc.to))
		})
	}
}

func TestAdmittedStatus(t *testing.T) {
	assert.Equal(t, model.RegistrationConfirmed, admittedStatus(false))
	assert.Equal(t, model.RegistrationPending, admittedStatus(true))
}
