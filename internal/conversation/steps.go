package conversation

import (
	"fmt"
	"time"

	"github.com/m3rciful/autoservice-bot/core/telegram/state"
)

// Step is the current position of a user inside a flow. The set of
// variants is closed: only types in this package implement it.
type Step interface {
	state() state.State
}

// Idle means no flow is in progress.
type Idle struct{}

// AwaitingUsername waits for the new account's username.
type AwaitingUsername struct{}

// AwaitingPassword waits for the password of an accepted username.
type AwaitingPassword struct {
	Username string
}

// AwaitingRole waits for a role button press.
type AwaitingRole struct {
	Username string
	Password string
}

// AwaitingClientID waits for the appointment's client id.
type AwaitingClientID struct{}

// AwaitingBranchID waits for the branch id. ServiceID is already filled
// when the service is taken from the client id.
type AwaitingBranchID struct {
	ClientID  string
	ServiceID string
}

// AwaitingServiceID waits for an explicit service id.
type AwaitingServiceID struct {
	ClientID string
	BranchID string
}

// AwaitingQuery waits for the client search string.
type AwaitingQuery struct{}

const (
	stateAwaitingUsername  state.State = "register.username"
	stateAwaitingPassword  state.State = "register.password"
	stateAwaitingRole      state.State = "register.role"
	stateAwaitingClientID  state.State = "appointment.client_id"
	stateAwaitingBranchID  state.State = "appointment.branch_id"
	stateAwaitingServiceID state.State = "appointment.service_id"
	stateAwaitingQuery     state.State = "search.query"
)

// pendingPasswordTTL bounds how long an unhashed password waits for the role button.
const pendingPasswordTTL = 10 * time.Minute

const (
	keyUsername  = "username"
	keyPassword  = "password"
	keyClientID  = "client_id"
	keyBranchID  = "branch_id"
	keyServiceID = "service_id"
)

func (Idle) state() state.State { return state.StateIdle }
func (AwaitingUsername) state() state.State { return stateAwaitingUsername }
func (AwaitingPassword) state() state.State { return stateAwaitingPassword }
func (AwaitingRole) state() state.State { return stateAwaitingRole }
func (AwaitingClientID) state() state.State { return stateAwaitingClientID }
func (AwaitingBranchID) state() state.State { return stateAwaitingBranchID }
func (AwaitingServiceID) state() state.State { return stateAwaitingServiceID }
func (AwaitingQuery) state() state.State { return stateAwaitingQuery }

// encode flattens a step into a storable session.
func encode(step Step) state.Session {
	s := state.Session{State: step.state()}
	switch v := step.(type) {
	case AwaitingPassword:
		s = s.With(keyUsername, v.Username)
	case AwaitingRole:
		s = s.With(keyUsername, v.Username).With(keyPassword, v.Password)
		s.TTL = pendingPasswordTTL
	case AwaitingBranchID:
		s = s.With(keyClientID, v.ClientID).With(keyServiceID, v.ServiceID)
	case AwaitingServiceID:
		s = s.With(keyClientID, v.ClientID).With(keyBranchID, v.BranchID)
	}
	return s
}

// decode restores the step stored in s.
func decode(s state.Session) (Step, error) {
	switch s.State {
	case "", state.StateIdle:
		return Idle{}, nil
	case stateAwaitingUsername:
		return AwaitingUsername{}, nil
	case stateAwaitingPassword:
		return AwaitingPassword{Username: s.Get(keyUsername)}, nil
	case stateAwaitingRole:
		return AwaitingRole{Username: s.Get(keyUsername), Password: s.Get(keyPassword)}, nil
	case stateAwaitingClientID:
		return AwaitingClientID{}, nil
	case stateAwaitingBranchID:
		return AwaitingBranchID{ClientID: s.Get(keyClientID), ServiceID: s.Get(keyServiceID)}, nil
	case stateAwaitingServiceID:
		return AwaitingServiceID{ClientID: s.Get(keyClientID), BranchID: s.Get(keyBranchID)}, nil
	case stateAwaitingQuery:
		return AwaitingQuery{}, nil
	}
	return Idle{}, fmt.Errorf("unknown conversation state %q", s.State)
}
