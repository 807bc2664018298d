package crypto

import "crypto/sha256"

// Fingerprint returns the first 16 bytes of SHA-256 of a public key's
// subjectPublicKeyInfo encoding (§3).
func Fingerprint(subjectPublicKeyInfoDER []byte) []byte {
	h := sha256.Sum256(subjectPublicKeyInfoDER)
	return h[:16]
}
