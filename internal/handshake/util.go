package handshake

import (
	"crypto/sha256"
	"encoding/base64"
)

func sha256Sum(b []byte) []byte {
	h := sha256.Sum256(b)
	return h[:]
}

func b64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
