package app

import "sync"

// gameLocks grants exclusive, non-blocking access to one game at a time.
type gameLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newGameLocks() *gameLocks {
	return &gameLocks{held: make(map[string]struct{})}
}

// tryLock acquires the game or reports false if another caller holds it.
// The returned func releases the lock.
func (l *gameLocks) tryLock(gameID string) (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[gameID]; busy {
		return nil, false
	}
	l.held[gameID] = struct{}{}
	return func() {
		l.mu.Lock()
		delete(l.held, gameID)
		l.mu.Unlock()
	}, true
}
