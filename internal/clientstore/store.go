// Package clientstore implements the client local store of §6: keyed
// blobs for the long-term signing key, the long-term encryption key
// (unused by the core), and one session-key blob per (user_id,
// session_id) carrying {keyData, sequenceNumber, partnerId}. It is
// "opaque to the core contract" per §6 — any at-rest encryption of the
// blobs is a deployment concern; this package defines the shape and an
// in-memory implementation. No file-backed or encrypted Store is
// provided, so blobs held by Memory do not survive a process restart.
package clientstore

import (
	"crypto/ecdh"
	"crypto/rsa"
	"sync"
)

// PendingBlob is what the client persists for an in-flight handshake so
// Resume (§9) can rehydrate it after a restart: the ephemeral private
// key and own nonce must survive the process, or the handshake cannot
// be completed.
type PendingBlob struct {
	SessionID     string
	Role          string
	PeerID        string
	EphemeralPriv *ecdh.PrivateKey
	OwnNonce      []byte
}

// SessionBlob is the completed-session record of §6.
type SessionBlob struct {
	PartnerID      string
	KeyData        []byte
	SequenceNumber uint64
}

// Store is the client's exclusively-owned local key store (§5 Shared
// resources item b): never shared across processes.
type Store interface {
	SigningKey() *rsa.PrivateKey
	EncryptionKey() *rsa.PrivateKey

	SavePending(blob *PendingBlob) error
	LoadPending(sessionID string) (*PendingBlob, error)
	DeletePending(sessionID string) error

	SaveSession(userID, sessionID string, blob *SessionBlob) error
	LoadSession(userID, sessionID string) (*SessionBlob, error)
	UpdateSequence(userID, sessionID string, seq uint64) error
}

// Memory is an in-process Store, sufficient for tests and for a client
// that accepts losing in-flight handshakes across restarts.
type Memory struct {
	mu        sync.Mutex
	signing   *rsa.PrivateKey
	encrypt   *rsa.PrivateKey
	pending   map[string]*PendingBlob
	sessions  map[string]*SessionBlob
}

// NewMemory builds a Memory store for the given long-term keys.
func NewMemory(signing, encrypt *rsa.PrivateKey) *Memory {
	return &Memory{
		signing:  signing,
		encrypt:  encrypt,
		pending:  make(map[string]*PendingBlob),
		sessions: make(map[string]*SessionBlob),
	}
}

func (m *Memory) SigningKey() *rsa.PrivateKey    { return m.signing }
func (m *Memory) EncryptionKey() *rsa.PrivateKey { return m.encrypt }

func (m *Memory) SavePending(blob *PendingBlob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[blob.SessionID] = blob
	return nil
}

func (m *Memory) LoadPending(sessionID string) (*PendingBlob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.pending[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return blob, nil
}

func (m *Memory) DeletePending(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, sessionID)
	return nil
}

func sessionKey(userID, sessionID string) string { return userID + "|" + sessionID }

func (m *Memory) SaveSession(userID, sessionID string, blob *SessionBlob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionKey(userID, sessionID)] = blob
	return nil
}

func (m *Memory) LoadSession(userID, sessionID string) (*SessionBlob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.sessions[sessionKey(userID, sessionID)]
	if !ok {
		return nil, ErrNotFound
	}
	return blob, nil
}

func (m *Memory) UpdateSequence(userID, sessionID string, seq uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.sessions[sessionKey(userID, sessionID)]
	if !ok {
		return ErrNotFound
	}
	blob.SequenceNumber = seq
	return nil
}

// ErrNotFound is returned when a keyed blob does not exist.
var ErrNotFound = notFoundErr{}

type notFoundErr struct{}

func (notFoundErr) Error() string { return "clientstore: blob not found" }
