// Package crypto wraps the primitives spec.md §4.1 names: ECDH over
// P-256, HKDF-SHA-256, AES-256-GCM, RSA-PSS, HMAC-SHA-256, and a CSPRNG.
// Every wrapper here is deterministic given its inputs except where
// randomness is explicit, matching the teacher's crypto_utils style of
// small, single-purpose functions around stdlib primitives.
package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"errors"
)

// EphemeralKeyPair is a single-use ECDH key pair generated for one
// handshake (glossary: Ephemeral key).
type EphemeralKeyPair struct {
	Private *ecdh.PrivateKey
	Public  []byte // 65-byte raw uncompressed encoding
}

// GenerateEphemeral produces a fresh P-256 ECDH key pair.
func GenerateEphemeral() (*EphemeralKeyPair, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.New("crypto: ecdh key generation failed")
	}
	return &EphemeralKeyPair{Private: priv, Public: priv.PublicKey().Bytes()}, nil
}

// DeriveShared computes the raw ECDH shared secret between priv and the
// peer's 65-byte raw uncompressed public point. Returns the x-coordinate
// derived via crypto/ecdh's ECDH() method (already X-only per NIST SP
// 800-56A as stdlib implements it).
func DeriveShared(priv *ecdh.PrivateKey, peerPublic []byte) ([]byte, error) {
	peerKey, err := ecdh.P256().NewPublicKey(peerPublic)
	if err != nil {
		return nil, errors.New("crypto: invalid peer ephemeral public key")
	}
	shared, err := priv.ECDH(peerKey)
	if err != nil {
		return nil, errors.New("crypto: ecdh derivation failed")
	}
	return shared, nil
}

// ParsePublic validates that raw is a well-formed 65-byte uncompressed
// P-256 point without retaining it. The relay-side validator does not
// call it: ValidateInit and ValidateRespond check only that the
// ephemeral key is valid base64.
func ParsePublic(raw []byte) error {
	_, err := ecdh.P256().NewPublicKey(raw)
	if err != nil {
		return errors.New("crypto: malformed ephemeral public key")
	}
	return nil
}
