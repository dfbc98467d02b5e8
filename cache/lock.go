package cache

import "sync"

// KeyedMutex serializes read-modify-write cycles on cache records by key.
// Checklist records are patched in place (read, mutate one field, write back);
// without per-key serialization two concurrent writers for the same symbol
// could silently drop each other's fields.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use. Locks are never
// reclaimed; the key space is bounded by the set of requested symbols.
func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
}

// Unlock releases the mutex for key. Panics if Lock was never called for it.
func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	l := k.locks[key]
	k.mu.Unlock()

	l.Unlock()
}
