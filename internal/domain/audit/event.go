package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names recorded by the authentication flows.
const (
	ActionLogin         = "auth.login"
	ActionMFA           = "auth.mfa"
	ActionLogout        = "auth.logout"
	ActionPatientLogin  = "patient.login"
	ActionPatientLogout = "patient.logout"
)

// Outcome values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePending = "pending"
)

// Event is a single, append-only audit record.
type Event struct {
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	RemoteAddr string    `json:"remoteAddr,omitempty"`
}

// NewEvent stamps a new event with a random id and the given time.
func NewEvent(at time.Time, actor, action, outcome string) Event {
	return Event{
		ID:      uuid.NewString(),
		At:      at.UTC(),
		Actor:   actor,
		Action:  action,
		Outcome: outcome,
	}
}
