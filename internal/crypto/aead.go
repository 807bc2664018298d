package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
)

// GCMNonceSize is the 96-bit IV size AES-256-GCM uses in this system.
const GCMNonceSize = 12

// ErrSealFailed and ErrAuthFailed map to the CryptoError codes of §4.1;
// callers (internal/channel, internal/filetransfer) wrap these in
// domain.CodeSealFailed / CodeAuthFailed errors.
var (
	ErrSealFailed = errors.New("crypto: aead seal failed")
	ErrAuthFailed = errors.New("crypto: aead authentication failed")
)

// SealGCM performs AES-256-GCM encryption: 96-bit IV, 128-bit tag
// appended to the ciphertext.
func SealGCM(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrSealFailed
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, GCMNonceSize)
	if err != nil {
		return nil, ErrSealFailed
	}
	if len(iv) != GCMNonceSize {
		return nil, ErrSealFailed
	}
	return gcm.Seal(nil, iv, plaintext, nil), nil
}

// OpenGCM decrypts and authenticates ciphertext. On any tag mismatch it
// returns ErrAuthFailed and no plaintext — the caller must not advance
// sequence state on this error (§4.3, §7).
func OpenGCM(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrAuthFailed
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, GCMNonceSize)
	if err != nil {
		return nil, ErrAuthFailed
	}
	if len(iv) != GCMNonceSize {
		return nil, ErrAuthFailed
	}
	plaintext, err := gcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

// RandomBytes is the CSPRNG wrapper (`random_bytes(n)` in §4.1).
func RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, errors.New("crypto: random generation failed")
	}
	return buf, nil
}
