package admission

import "github.com/eventnav/program-service/internal/model"

// The registration state machine. The zero state (no row) is "absent";
// Register creates or reactivates, Approve confirms, Cancel releases the
// seat. A cancelled row is never deleted, only reactivated.
//
//	absent    -> pending | confirmed   (Register, policy-dependent)
//	pending   -> confirmed             (Approve)
//	pending   -> cancelled             (Cancel)
//	confirmed -> cancelled             (Cancel)
//	cancelled -> pending | confirmed   (Register, reactivation)

// statusAbsent is the pseudo-status of a (session, user) pair with no row.
const statusAbsent model.RegistrationStatus = ""

var transitions = map[model.RegistrationStatus][]model.RegistrationStatus{
	statusAbsent:                {model.RegistrationPending, model.RegistrationConfirmed},
	model.RegistrationPending:   {model.RegistrationConfirmed, model.RegistrationCancelled},
	model.RegistrationConfirmed: {model.RegistrationCancelled},
	model.RegistrationCancelled: {model.RegistrationPending, model.RegistrationConfirmed},
}

// canTransition reports whether the state machine permits from -> to.
func canTransition(from, to model.RegistrationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// admittedStatus is the status a fresh or reactivated registration gets,
// depending on the session's approval policy. Reactivation is treated
// exactly like a fresh Register with respect to policy evaluation.
func admittedStatus(approvalRequired bool) model.RegistrationStatus {
	if approvalRequired {
		return model.RegistrationPending
	}
	return model.RegistrationConfirmed
}
