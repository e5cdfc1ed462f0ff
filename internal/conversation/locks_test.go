package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func (l *userLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}

func TestUserLocksAreIndependent(t *testing.T) {
	var locks userLocks
	release := locks.acquire(1)

	done := make(chan struct{})
	go func() {
		locks.acquire(2)()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("user 2 blocked behind user 1")
	}

	second := make(chan struct{})
	go func() {
		locks.acquire(1)()
		close(second)
	}()
	select {
	case <-second:
		t.Fatal("second step of user 1 ran while the first held the lock")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	<-second
	assert.Zero(t, locks.held())
}
