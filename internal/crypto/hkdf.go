package crypto

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// SessionKeyInfo is the fixed info string for session-key derivation
// (§4.2): K = hkdf(ikm=z, salt=n_A‖n_B, info="secure-messaging-session-key", 32).
const SessionKeyInfo = "secure-messaging-session-key"

// HKDF derives n bytes via HKDF-Extract-then-Expand with SHA-256.
func HKDF(ikm, salt, info []byte, n int) ([]byte, error) {
	kdf := hkdf.New(sha256.New, ikm, salt, info)
	out := make([]byte, n)
	if _, err := io.ReadFull(kdf, out); err != nil {
		return nil, errors.New("crypto: hkdf expand failed")
	}
	return out, nil
}

// DeriveSessionKey implements the K derivation of §4.2 exactly: salt is
// the concatenation nonceA‖nonceB in that fixed order for both parties
// (§9 Open Questions — byte-order is pinned here, never reversed).
func DeriveSessionKey(sharedSecret, nonceA, nonceB []byte) ([]byte, error) {
	salt := make([]byte, 0, len(nonceA)+len(nonceB))
	salt = append(salt, nonceA...)
	salt = append(salt, nonceB...)
	return HKDF(sharedSecret, salt, []byte(SessionKeyInfo), 32)
}
