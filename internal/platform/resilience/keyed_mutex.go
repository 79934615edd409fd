package resilience

import "sync"

// KeyedMutex provides one mutex per key. Locks for distinct keys are fully
// independent; a key's mutex is created on first use and never discarded, so
// the map grows with the number of distinct keys (bounded in practice by the
// league catalog size).
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (m *KeyedMutex) Lock(key string) {
	m.forKey(key).Lock()
}

func (m *KeyedMutex) Unlock(key string) {
	m.forKey(key).Unlock()
}

func (m *KeyedMutex) forKey(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	return lock
}
