package handshake

import (
	"fmt"

	securecrypto "github.com/relaycore/securemsg/internal/crypto"
)

// MintSessionID builds the initiator-generated session_id (§3):
// <initiator_id>|<responder_id>|<creation_millis>.
func MintSessionID(initiatorID, responderID string, creationMillis int64) string {
	return fmt.Sprintf("%s|%s|%d", initiatorID, responderID, creationMillis)
}

// Role distinguishes the two confirmation-tag inputs of §4.2.
type Role string

const (
	RoleInitiator Role = "initiator"
	RoleResponder Role = "responder"
)

// SharedSecretHash computes h = sha256(z), the quantity both parties
// compare implicitly through the confirmation tags (glossary, P1, P8).
func SharedSecretHash(z []byte) []byte {
	return sha256Sum(z)
}

// ConfirmationInput builds the exact "<S>|<role>|<base64(h)>" string
// hashed by hmac_sha256(z, ...) in §4.2.
func ConfirmationInput(sessionID string, role Role, h []byte) []byte {
	return []byte(sessionID + "|" + string(role) + "|" + b64(h))
}

// ComputeConfirmation computes the confirmation tag for role under
// shared secret z and session id.
func ComputeConfirmation(z []byte, sessionID string, role Role) []byte {
	h := SharedSecretHash(z)
	input := ConfirmationInput(sessionID, role, h)
	return securecrypto.HMACSHA256(z, input)
}

// VerifyConfirmation recomputes the expected tag for role and compares
// it to tag in constant time.
func VerifyConfirmation(z []byte, sessionID string, role Role, tag []byte) bool {
	expected := ComputeConfirmation(z, sessionID, role)
	return securecrypto.EqualConstantTime(expected, tag)
}

// DeriveSessionKey is a thin re-export so callers only need to import
// the handshake package for the full §4.2 key-schedule.
func DeriveSessionKey(z, nonceA, nonceB []byte) ([]byte, error) {
	return securecrypto.DeriveSessionKey(z, nonceA, nonceB)
}
