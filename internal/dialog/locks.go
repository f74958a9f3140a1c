package dialog

import "sync"

// lockTable serializes turns per conversation ID. Entries are
// reference counted so the table does not grow with every conversation
// ever seen.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*convLock
}

type convLock struct {
	mu   sync.Mutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*convLock)}
}

// lock acquires the per-conversation lock and returns its release
// function.
func (t *lockTable) lock(conversationID string) func() {
	t.mu.Lock()
	l, ok := t.locks[conversationID]
	if !ok {
		l = &convLock{}
		t.locks[conversationID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, conversationID)
		}
		t.mu.Unlock()
	}
}
