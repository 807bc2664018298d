package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/relaycore/securemsg/internal/domain"

	_ "github.com/lib/pq"
)

// Postgres is the durable LedgerStore, grounded on the teacher's raw-SQL
// repository style (internal/storage/postgresql, internal/service/quota_service).
// Per-session serialization (§4.4 Concurrency) is achieved with a
// compare-and-set on the version column rather than an explicit
// application-level lock, the same pattern the teacher uses for quota
// updates guarded with `FOR SHARE`.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool against storagePath.
func NewPostgres(storagePath string) (*Postgres, error) {
	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("ledger: open: %w", err)
	}
	return &Postgres{db: db}, nil
}

// DB exposes the underlying pool for migrations and the operator CLI.
func (p *Postgres) DB() *sql.DB { return p.db }

func (p *Postgres) Create(ctx context.Context, rec *domain.HandshakeRecord) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO handshake_records (
			session_id, initiator_id, responder_id,
			initiator_ephemeral_pub, initiator_nonce, initiator_signature,
			initiator_last_sequence, responder_last_sequence,
			status, created_at, expires_at, version
		) VALUES ($1,$2,$3,$4,$5,$6,0,0,$7,$8,$9,1)
	`, rec.SessionID, rec.InitiatorID, rec.ResponderID,
		rec.InitiatorEphemeralPub, rec.InitiatorNonce, rec.InitiatorSignature,
		rec.Status, rec.CreatedAt, rec.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("ledger: create: %w", err)
	}
	rec.Version = 1
	return nil
}

func (p *Postgres) Get(ctx context.Context, sessionID string) (*domain.HandshakeRecord, error) {
	var rec domain.HandshakeRecord
	var completedAt sql.NullTime

	err := p.db.QueryRowContext(ctx, `
		SELECT session_id, initiator_id, responder_id,
			initiator_ephemeral_pub, responder_ephemeral_pub,
			initiator_nonce, responder_nonce,
			initiator_signature, responder_signature,
			initiator_confirmation, responder_confirmation,
			initiator_last_sequence, responder_last_sequence,
			status, created_at, expires_at, completed_at, version
		FROM handshake_records WHERE session_id = $1
	`, sessionID).Scan(
		&rec.SessionID, &rec.InitiatorID, &rec.ResponderID,
		&rec.InitiatorEphemeralPub, &rec.ResponderEphemeralPub,
		&rec.InitiatorNonce, &rec.ResponderNonce,
		&rec.InitiatorSignature, &rec.ResponderSignature,
		&rec.InitiatorConfirmation, &rec.ResponderConfirmation,
		&rec.InitiatorLastSequence, &rec.ResponderLastSequence,
		&rec.Status, &rec.CreatedAt, &rec.ExpiresAt, &completedAt, &rec.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: get: %w", err)
	}
	if completedAt.Valid {
		rec.CompletedAt = completedAt.Time
	}
	return &rec, nil
}

func (p *Postgres) Update(ctx context.Context, rec *domain.HandshakeRecord) error {
	var completedAt interface{}
	if !rec.CompletedAt.IsZero() {
		completedAt = rec.CompletedAt
	}

	res, err := p.db.ExecContext(ctx, `
		UPDATE handshake_records SET
			responder_ephemeral_pub = $1,
			responder_nonce = $2,
			responder_signature = $3,
			initiator_confirmation = $4,
			responder_confirmation = $5,
			initiator_last_sequence = $6,
			responder_last_sequence = $7,
			status = $8,
			expires_at = $9,
			completed_at = $10,
			version = version + 1
		WHERE session_id = $11 AND version = $12
	`, rec.ResponderEphemeralPub, rec.ResponderNonce, rec.ResponderSignature,
		rec.InitiatorConfirmation, rec.ResponderConfirmation,
		rec.InitiatorLastSequence, rec.ResponderLastSequence,
		rec.Status, rec.ExpiresAt, completedAt,
		rec.SessionID, rec.Version)
	if err != nil {
		return fmt.Errorf("ledger: update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger: update rows affected: %w", err)
	}
	if n == 0 {
		if _, getErr := p.Get(ctx, rec.SessionID); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (p *Postgres) ListPendingForResponder(ctx context.Context, responderID string) ([]*domain.HandshakeRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT session_id FROM handshake_records
		WHERE responder_id = $1 AND status = $2
	`, responderID, domain.StatusInitiated)
	if err != nil {
		return nil, fmt.Errorf("ledger: list pending: %w", err)
	}
	defer rows.Close()

	var out []*domain.HandshakeRecord
	for rows.Next() {
		var sessionID string
		if err := rows.Scan(&sessionID); err != nil {
			return nil, fmt.Errorf("ledger: scan pending: %w", err)
		}
		rec, err := p.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) ListExpirable(ctx context.Context) ([]*domain.HandshakeRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT session_id FROM handshake_records
		WHERE status NOT IN ($1, $2, $3) AND expires_at < $4
	`, domain.StatusCompleted, domain.StatusFailed, domain.StatusExpired, time.Now())
	if err != nil {
		return nil, fmt.Errorf("ledger: list expirable: %w", err)
	}
	defer rows.Close()

	var out []*domain.HandshakeRecord
	for rows.Next() {
		var sessionID string
		if err := rows.Scan(&sessionID); err != nil {
			return nil, fmt.Errorf("ledger: scan expirable: %w", err)
		}
		rec, err := p.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveMessage(ctx context.Context, msg *domain.MessageRecord) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger: save message begin tx: %w", err)
	}
	defer tx.Rollback()

	var rec domain.HandshakeRecord
	err = tx.QueryRowContext(ctx, `
		SELECT initiator_id, responder_id FROM handshake_records
		WHERE session_id = $1 FOR UPDATE
	`, msg.SessionID).Scan(&rec.InitiatorID, &rec.ResponderID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("ledger: save message lock record: %w", err)
	}

	column := "responder_last_sequence"
	if msg.From == rec.InitiatorID {
		column = "initiator_last_sequence"
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		UPDATE handshake_records SET %s = $1 WHERE session_id = $2
	`, column), msg.SequenceNumber, msg.SessionID); err != nil {
		return fmt.Errorf("ledger: save message bump sequence: %w", err)
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	var fileMeta interface{}
	if msg.FileMetadata != nil {
		b, err := json.Marshal(msg.FileMetadata)
		if err != nil {
			return fmt.Errorf("ledger: marshal file metadata: %w", err)
		}
		fileMeta = b
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, from_user, to_user, session_id, ciphertext, iv, message_type, sequence_number, server_time, file_metadata)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, msg.ID, msg.From, msg.To, msg.SessionID, msg.Ciphertext, msg.IV, msg.MessageType, msg.SequenceNumber, msg.ServerTime, fileMeta); err != nil {
		return fmt.Errorf("ledger: insert message: %w", err)
	}

	return tx.Commit()
}

func (p *Postgres) Conversation(ctx context.Context, userA, userB string) ([]*domain.MessageRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, from_user, to_user, session_id, ciphertext, iv, message_type, sequence_number, server_time
		FROM messages
		WHERE (from_user = $1 AND to_user = $2) OR (from_user = $2 AND to_user = $1)
		ORDER BY server_time ASC
	`, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("ledger: conversation: %w", err)
	}
	defer rows.Close()

	var out []*domain.MessageRecord
	for rows.Next() {
		var msg domain.MessageRecord
		if err := rows.Scan(&msg.ID, &msg.From, &msg.To, &msg.SessionID, &msg.Ciphertext, &msg.IV,
			&msg.MessageType, &msg.SequenceNumber, &msg.ServerTime); err != nil {
			return nil, fmt.Errorf("ledger: scan message: %w", err)
		}
		out = append(out, &msg)
	}
	return out, rows.Err()
}

func (p *Postgres) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, event_type, session_id, user_id, details, ip, timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, entry.ID, entry.EventType, entry.SessionID, entry.CallerID, entry.Reason, entry.IP, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("ledger: append audit: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
