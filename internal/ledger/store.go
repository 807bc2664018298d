// Package ledger defines the LedgerStore collaborator interface (§9): a
// durable key-value store of handshake records, plus the append-only
// message and audit tables it shares a transactional boundary with.
package ledger

import (
	"context"
	"errors"

	"github.com/relaycore/securemsg/internal/domain"
)

// ErrNotFound is returned when a session_id has no record.
var ErrNotFound = errors.New("ledger: record not found")

// ErrVersionConflict is returned by Update when the stored record's
// Version no longer matches the expected value — the compare-and-set
// loser of §4.4's concurrent-Respond race.
var ErrVersionConflict = errors.New("ledger: version conflict")

// ErrAlreadyExists is returned by Create when session_id is already in
// use (Init never mutates an existing record, §4.2 edge cases).
var ErrAlreadyExists = errors.New("ledger: record already exists")

// Store is the durable handshake ledger plus message/audit storage. Every
// mutating method is serialized per session_id by the implementation
// (record-level lock or compare-and-set on Version, §4.4 Concurrency).
type Store interface {
	// Create inserts a brand new record in StatusInitiated. Returns
	// ErrAlreadyExists if session_id is taken.
	Create(ctx context.Context, rec *domain.HandshakeRecord) error

	// Get fetches a record by session_id. Returns ErrNotFound if absent.
	Get(ctx context.Context, sessionID string) (*domain.HandshakeRecord, error)

	// Update performs a compare-and-set: it succeeds only if the stored
	// record's Version equals rec.Version, then persists rec with
	// Version+1. Returns ErrVersionConflict on mismatch.
	Update(ctx context.Context, rec *domain.HandshakeRecord) error

	// ListPendingForResponder returns StatusInitiated records addressed
	// to responderID (GET /keys/exchange/pending, §6).
	ListPendingForResponder(ctx context.Context, responderID string) ([]*domain.HandshakeRecord, error)

	// ListExpirable returns records not yet Completed whose expires_at
	// has passed, for the janitor's garbage collection pass (§3).
	ListExpirable(ctx context.Context) ([]*domain.HandshakeRecord, error)

	// SaveMessage appends an immutable message record. Implementations
	// must update the sender-direction sequence counter on the
	// referenced handshake record atomically with the insert (§4.4
	// item 7) — callers pass the already-validated next sequence value.
	SaveMessage(ctx context.Context, msg *domain.MessageRecord) error

	// Conversation returns the chronological ciphertext list between
	// userA and userB (GET /messages/conversation/{userId}, §6).
	Conversation(ctx context.Context, userA, userB string) ([]*domain.MessageRecord, error)

	// AppendAudit writes an audit_log row (§4.4, §6).
	AppendAudit(ctx context.Context, entry *domain.AuditEntry) error
}
