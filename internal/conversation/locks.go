package conversation

import "sync"

// userLocks serializes the steps of one user while leaving other users
// independent. An entry lives only while someone holds or waits for it.
type userLocks struct {
	mu    sync.Mutex
	users map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// acquire blocks until no other step of userID runs and returns the release func.
func (l *userLocks) acquire(userID int64) func() {
	l.mu.Lock()
	if l.users == nil {
		l.users = make(map[int64]*userLock)
	}
	ul, ok := l.users[userID]
	if !ok {
		ul = &userLock{}
		l.users[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.users, userID)
		}
		l.mu.Unlock()
	}
}
