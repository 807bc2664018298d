package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate applies idempotent schema migrations for the two logical
// tables of §6 (handshake_records, messages) plus the audit_log table,
// grounded on the migration style of the pack's identity service
// (RegistryAccord's storage.MigratePostgres): a flat list of
// IF NOT EXISTS statements applied in order.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS identities (
			user_id TEXT PRIMARY KEY,
			signing_key_der BYTEA NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS handshake_records (
			session_id               TEXT PRIMARY KEY,
			initiator_id             TEXT NOT NULL,
			responder_id             TEXT NOT NULL,
			initiator_ephemeral_pub  BYTEA,
			responder_ephemeral_pub  BYTEA,
			initiator_nonce          BYTEA,
			responder_nonce          BYTEA,
			initiator_signature      BYTEA,
			responder_signature      BYTEA,
			initiator_confirmation   BYTEA,
			responder_confirmation   BYTEA,
			initiator_last_sequence  BIGINT NOT NULL DEFAULT 0,
			responder_last_sequence  BIGINT NOT NULL DEFAULT 0,
			status                   TEXT NOT NULL,
			created_at               TIMESTAMPTZ NOT NULL,
			expires_at               TIMESTAMPTZ NOT NULL,
			completed_at             TIMESTAMPTZ,
			version                  BIGINT NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_handshake_records_expires_at ON handshake_records (expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_handshake_records_responder ON handshake_records (responder_id, status)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id              TEXT PRIMARY KEY,
			from_user       TEXT NOT NULL,
			to_user         TEXT NOT NULL,
			session_id      TEXT NOT NULL REFERENCES handshake_records(session_id),
			ciphertext      BYTEA NOT NULL,
			iv              BYTEA NOT NULL,
			message_type    TEXT NOT NULL,
			sequence_number BIGINT NOT NULL,
			server_time     TIMESTAMPTZ NOT NULL,
			file_metadata   JSONB
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages (from_user, to_user, server_time)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id         TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			session_id TEXT,
			user_id    TEXT,
			details    TEXT,
			ip         TEXT,
			timestamp  TIMESTAMPTZ NOT NULL
		)`,
	}

	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ledger: migration %d: %w", i, err)
		}
	}
	return nil
}
