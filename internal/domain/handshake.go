// Package domain holds the core entities the ledger and secure channel
// operate on. Nothing here talks to Redis, Postgres, or the network.
package domain

import "time"

// Status is a handshake record's position in the state machine from
// spec.md §4.2.
type Status string

const (
	StatusInitiated Status = "Initiated"
	StatusResponded Status = "Responded"
	StatusConfirmed Status = "Confirmed"
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
	StatusExpired   Status = "Expired"
)

// HandshakeRecord is the ledger entity keyed by SessionID (§3).
type HandshakeRecord struct {
	SessionID   string
	InitiatorID string
	ResponderID string

	InitiatorEphemeralPub []byte // 65-byte raw uncompressed P-256 point
	ResponderEphemeralPub []byte

	InitiatorNonce []byte // 32 random bytes
	ResponderNonce []byte

	InitiatorSignature []byte
	ResponderSignature []byte

	InitiatorConfirmation []byte // HMAC tag, 32 bytes
	ResponderConfirmation []byte

	InitiatorLastSequence uint64
	ResponderLastSequence uint64

	Status Status

	CreatedAt   time.Time
	ExpiresAt   time.Time
	CompletedAt time.Time

	// Version backs optimistic concurrency control (§4.4 Concurrency):
	// every mutating transition does a compare-and-set on this field.
	Version int64
}

// Responded reports whether both ephemeral keys and nonces are present,
// the I2 invariant for a record in the Responded state or later.
func (r *HandshakeRecord) Responded() bool {
	return len(r.InitiatorEphemeralPub) > 0 && len(r.ResponderEphemeralPub) > 0 &&
		len(r.InitiatorNonce) > 0 && len(r.ResponderNonce) > 0
}

// Terminal reports whether the record can no longer transition (I5).
func (r *HandshakeRecord) Terminal() bool {
	return r.Status == StatusFailed || r.Status == StatusExpired
}

// MessageType distinguishes text payloads from file chunks (§3).
type MessageType string

const (
	MessageTypeText MessageType = "text"
	MessageTypeFile MessageType = "file"
)

// MessageRecord is immutable once stored (§3). No plaintext or key
// material is ever persisted here.
type MessageRecord struct {
	ID             string
	From           string
	To             string
	SessionID      string
	Ciphertext     []byte
	IV             []byte
	MessageType    MessageType
	SequenceNumber uint64
	ServerTime     time.Time
	FileMetadata   *FileMetadata
}

// FileMetadata carries envelope-mode chunk references (§4.3). Present
// only when MessageType == MessageTypeFile.
type FileMetadata struct {
	FileID       string
	ChunkIndex   int
	ChunkCount   int
	ObjectKey    string // MinIO object key for this chunk's ciphertext
	WrappedKeys  map[string][]byte // recipient user id -> per-file key sealed with AES-GCM (IV‖ciphertext)
	PlaintextLen int
}

// AuditEntry is a single row in the audit_log table (§6, §4.4).
type AuditEntry struct {
	ID        string
	EventType string
	SessionID string
	CallerID  string
	Reason    string
	IP        string
	Timestamp time.Time
}
