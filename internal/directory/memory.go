package directory

import (
	"context"
	"crypto/rsa"
	"sync"
)

// Memory is an in-memory Lookup used by the test harness (§9) to
// exercise the handshake engine and validator without a database.
type Memory struct {
	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

// NewMemory returns an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{keys: make(map[string]*rsa.PublicKey)}
}

// Put registers userID's signing key.
func (m *Memory) Put(userID string, pub *rsa.PublicKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[userID] = pub
}

// Remove deletes userID's registration, used to test NoSigningKey.
func (m *Memory) Remove(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, userID)
}

func (m *Memory) SigningKey(ctx context.Context, userID string) (*rsa.PublicKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pub, ok := m.keys[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return pub, nil
}
