package directory

import (
	"context"
	"crypto/rsa"
	"database/sql"
	"errors"
	"fmt"

	securecrypto "github.com/relaycore/securemsg/internal/crypto"

	_ "github.com/lib/pq"
)

// PostgresDirectory is the durable identity directory, grounded on the
// teacher's raw-SQL repository style in internal/service/quota_service.
type PostgresDirectory struct {
	db *sql.DB
}

// NewPostgresDirectory opens a connection pool against storagePath (a
// postgres:// DSN), mirroring quota_service.NewQuotaService.
func NewPostgresDirectory(storagePath string) (*PostgresDirectory, error) {
	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("directory: open: %w", err)
	}
	return &PostgresDirectory{db: db}, nil
}

// RegisterSigningKey stores userID's long-term RSA-PSS verification key.
// Registration itself is an external collaborator concern (§1); this
// exists so the operator CLI and test fixtures can seed the directory.
func (d *PostgresDirectory) RegisterSigningKey(ctx context.Context, userID string, pub *rsa.PublicKey) error {
	der, err := securecrypto.MarshalRSAPublicKeyDER(pub)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO identities (user_id, signing_key_der)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET signing_key_der = EXCLUDED.signing_key_der
	`, userID, der)
	if err != nil {
		return fmt.Errorf("directory: register: %w", err)
	}
	return nil
}

// SigningKey implements Lookup.
func (d *PostgresDirectory) SigningKey(ctx context.Context, userID string) (*rsa.PublicKey, error) {
	var der []byte
	err := d.db.QueryRowContext(ctx, `
		SELECT signing_key_der FROM identities WHERE user_id = $1
	`, userID).Scan(&der)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("directory: lookup: %w", err)
	}
	return securecrypto.ParseRSAPublicKeyDER(der)
}
