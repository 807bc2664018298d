package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"errors"
)

// PSSSaltLength is fixed at 32 bytes per §3 (salt length 32, SHA-256).
const PSSSaltLength = 32

var pssOptions = &rsa.PSSOptions{SaltLength: PSSSaltLength, Hash: crypto.SHA256}

// SignPSS signs msg's SHA-256 digest with priv under RSA-PSS.
func SignPSS(priv *rsa.PrivateKey, msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	sig, err := rsa.SignPSS(rand.Reader, priv, crypto.SHA256, digest[:], pssOptions)
	if err != nil {
		return nil, errors.New("crypto: rsa-pss sign failed")
	}
	return sig, nil
}

// VerifyPSS verifies sig over msg under pub. Per §4.1 it must return
// false on any malformed input, never panic or return an error.
func VerifyPSS(pub *rsa.PublicKey, msg, sig []byte) bool {
	if pub == nil || len(sig) == 0 {
		return false
	}
	digest := sha256.Sum256(msg)
	return rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, pssOptions) == nil
}

// ParseRSAPublicKeyDER parses a subjectPublicKeyInfo-encoded RSA public
// key, returning (nil, err) rather than panicking on malformed input.
func ParseRSAPublicKeyDER(der []byte) (*rsa.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, errors.New("crypto: invalid rsa public key encoding")
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("crypto: not an rsa public key")
	}
	return rsaPub, nil
}

// MarshalRSAPublicKeyDER encodes pub as subjectPublicKeyInfo DER.
func MarshalRSAPublicKeyDER(pub *rsa.PublicKey) ([]byte, error) {
	return x509.MarshalPKIXPublicKey(pub)
}

// GenerateSigningKey generates a 2048-bit RSA-PSS signing key pair (§3).
func GenerateSigningKey() (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, errors.New("crypto: rsa key generation failed")
	}
	return key, nil
}
