package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
)

// HMACSHA256 computes the confirmation tag used in §4.2: hmac_sha256(key, msg).
func HMACSHA256(key, msg []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}

// EqualConstantTime reports whether a and b are equal using constant-time
// comparison, as confirmation tags must never be compared with ==.
func EqualConstantTime(a, b []byte) bool {
	return hmac.Equal(a, b)
}
