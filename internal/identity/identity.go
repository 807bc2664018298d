// Package identity models a local identity: the long-term RSA-PSS
// signing key pair plus the (core-unused) encryption key pair retained
// for directory-level fingerprinting (§3). Generation, storage, and
// registration of these keys with the directory are collaborator
// concerns; this package only carries the material the handshake
// engine signs and verifies with.
package identity

import (
	"crypto/rand"
	"crypto/rsa"

	securecrypto "github.com/relaycore/securemsg/internal/crypto"
)

// Identity is one user's long-term key material.
type Identity struct {
	UserID        string
	SigningPriv   *rsa.PrivateKey
	EncryptionPriv *rsa.PrivateKey // unused by the core handshake (§3)
}

// New generates a fresh identity: a 2048-bit RSA-PSS signing pair and a
// separate 2048-bit RSA encryption pair, mirroring the teacher's
// two-keypair-per-identity model (server_keystore.FileKeyStore, minus
// the ECDSA half this system replaces with RSA-PSS per §3).
func New(userID string) (*Identity, error) {
	signingPriv, err := securecrypto.GenerateSigningKey()
	if err != nil {
		return nil, err
	}
	encPriv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: userID, SigningPriv: signingPriv, EncryptionPriv: encPriv}, nil
}

// Fingerprint returns the first 16 bytes of SHA-256 of the signing
// public key's subjectPublicKeyInfo encoding (§3).
func (id *Identity) Fingerprint() ([]byte, error) {
	der, err := securecrypto.MarshalRSAPublicKeyDER(&id.SigningPriv.PublicKey)
	if err != nil {
		return nil, err
	}
	return securecrypto.Fingerprint(der), nil
}
