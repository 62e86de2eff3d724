package ledger

import "sync"

// userLocks hands out one mutex per user id. The unlock and append paths hold
// the user's mutex across their read-check-write sequence so two concurrent
// spends for the same user cannot both pass the balance check. Storage-level
// version conditions back this up across processes.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *userLocks) get(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	return m
}
