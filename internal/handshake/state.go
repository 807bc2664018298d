package handshake

import (
	"crypto/ecdh"
	"sync"

	"github.com/relaycore/securemsg/internal/clientstore"
)

// Pending is the client's in-memory view of one handshake in flight
// (§9 Design Notes). It holds the ephemeral private key and raw shared
// secret only until Completed; after that, only SessionKey survives and
// the rest is zeroized (§5 Secret handling).
type Pending struct {
	SessionID     string
	Role          Role
	PeerID        string
	EphemeralPriv *ecdh.PrivateKey
	OwnNonce      []byte
	PeerNonce     []byte
	PeerPublic    []byte
	SharedSecret  []byte
	SessionKey    []byte
	OwnConfirmed  bool
	PeerConfirmed bool
}

// Zeroize overwrites the secret-bearing fields, called once the session
// key has been handed to the secure channel or the attempt is abandoned
// (§5, §9 Cyclic references).
func (p *Pending) Zeroize() {
	zero(p.SharedSecret)
	p.SharedSecret = nil
	p.EphemeralPriv = nil
}

// Persist saves the fields Resume needs to rebuild this Pending after a
// restart. Must be called before the process might die — once
// CompleteKeySchedule runs there is nothing more to persist here since
// the shared secret and session key are not durable by design (§5).
func (p *Pending) Persist(store clientstore.Store) error {
	return store.SavePending(&clientstore.PendingBlob{
		SessionID:     p.SessionID,
		Role:          string(p.Role),
		PeerID:        p.PeerID,
		EphemeralPriv: p.EphemeralPriv,
		OwnNonce:      p.OwnNonce,
	})
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ActiveMap is the client's in-memory map of active handshakes keyed by
// session_id, re-hydratable via Resume (§9).
type ActiveMap struct {
	mu    sync.Mutex
	items map[string]*Pending
}

// NewActiveMap returns an empty ActiveMap.
func NewActiveMap() *ActiveMap {
	return &ActiveMap{items: make(map[string]*Pending)}
}

func (a *ActiveMap) Put(p *Pending) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items[p.SessionID] = p
}

func (a *ActiveMap) Get(sessionID string) (*Pending, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.items[sessionID]
	return p, ok
}

func (a *ActiveMap) Remove(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.items[sessionID]; ok {
		p.Zeroize()
		delete(a.items, sessionID)
	}
}
