// Package handshake implements the three-message authenticated key
// agreement of spec.md §4.2: canonical signed payloads, session-key and
// confirmation derivation, and the client-side driver that produces
// them. The relay-side gating logic lives in internal/validator, which
// reuses the payload reconstruction here to verify signatures against
// ledger-stored fields.
package handshake

import (
	"encoding/base64"

	"github.com/relaycore/securemsg/internal/canon"
)

// InitPayload builds payload_A of §4.2: the canonical JSON the
// initiator signs before sending Init.
func InitPayload(responderID string, ephemeralPublic, nonce []byte, timestampMillis int64) ([]byte, error) {
	return canon.Payload{
		"responderId":     responderID,
		"ephemeralPublic": base64.StdEncoding.EncodeToString(ephemeralPublic),
		"nonce":           base64.StdEncoding.EncodeToString(nonce),
		"timestamp":       timestampMillis,
		"type":            "key_exchange_init",
	}.Bytes()
}

// RespondPayload builds payload_B of §4.2: the canonical JSON the
// responder signs before sending Respond.
func RespondPayload(sessionID string, ephemeralPublic, nonce []byte, timestampMillis int64) ([]byte, error) {
	return canon.Payload{
		"sessionId":       sessionID,
		"ephemeralPublic": base64.StdEncoding.EncodeToString(ephemeralPublic),
		"nonce":           base64.StdEncoding.EncodeToString(nonce),
		"timestamp":       timestampMillis,
		"type":            "key_exchange_response",
	}.Bytes()
}
