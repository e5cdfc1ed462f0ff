package state

import (
	"context"
	"time"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and temporary data for a user.
type Session struct {
	State     State             `json:"state"`
	Data      map[string]string `json:"data,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
	// TTL shortens the store's expiry for this session when set.
	TTL time.Duration `json:"-"`
}

// Idle returns an empty session.
func Idle() Session {
	return Session{State: StateIdle}
}

// Active reports whether the session is inside a flow.
func (s Session) Active() bool {
	return s.State != "" && s.State != StateIdle
}

// expiry returns the effective lifetime under a store default; 0 means none.
func (s Session) expiry(storeTTL time.Duration) time.Duration {
	if s.TTL > 0 && (storeTTL <= 0 || s.TTL < storeTTL) {
		return s.TTL
	}
	return storeTTL
}

// Get returns a payload value.
func (s Session) Get(key string) string {
	return s.Data[key]
}

// With returns a copy of the session with key set to value.
func (s Session) With(key, value string) Session {
	data := make(map[string]string, len(s.Data)+1)
	for k, v := range s.Data {
		data[k] = v
	}
	data[key] = value
	s.Data = data
	return s
}

// Store keeps sessions keyed by Telegram user ID.
// Saving a session replaces the previous one entirely (last write wins).
type Store interface {
	// Load returns the user's session, or an idle session when none exists or it expired.
	Load(ctx context.Context, userID int64) (Session, error)
	// Save stores the session and refreshes its expiry.
	Save(ctx context.Context, userID int64, s Session) error
	// Clear removes the user's session.
	Clear(ctx context.Context, userID int64) error
}
