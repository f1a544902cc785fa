package store

import "sync"

// KeyedLocks serializes read-modify-write cycles per key. Two concurrent
// mutations of the same scope must not drop one another; holding the scope's
// lock around the whole cycle guarantees that without cross-scope contention.
type KeyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedLocks creates an empty lock registry.
func NewKeyedLocks() *KeyedLocks {
	return &KeyedLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for key, creating it on first use, and returns the
// matching unlock function.
func (k *KeyedLocks) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
