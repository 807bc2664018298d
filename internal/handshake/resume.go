package handshake

import (
	"encoding/base64"
	"fmt"

	"github.com/relaycore/securemsg/internal/clientstore"
	"github.com/relaycore/securemsg/internal/dto"
)

// Resume rehydrates a Pending after a client restart (§9): the
// ephemeral private key and own nonce come from the local store (the
// relay never sees them), while the peer's public fields come from the
// last GET /keys/exchange/session/{id} view. It leaves confirmation
// state as reported by the server view so the caller can re-derive the
// key schedule and redo the confirmation round-trip if needed.
func Resume(store clientstore.Store, view *dto.SessionView) (*Pending, error) {
	blob, err := store.LoadPending(view.SessionID)
	if err != nil {
		return nil, fmt.Errorf("handshake: resume: no local pending state for session %s: %w", view.SessionID, err)
	}

	role := RoleInitiator
	if blob.Role == string(RoleResponder) {
		role = RoleResponder
	}

	pending := &Pending{
		SessionID:     view.SessionID,
		Role:          role,
		PeerID:        blob.PeerID,
		EphemeralPriv: blob.EphemeralPriv,
		OwnNonce:      blob.OwnNonce,
	}

	var peerPubB64, peerNonceB64, peerConfirmB64 string
	if role == RoleInitiator {
		peerPubB64, peerNonceB64, peerConfirmB64 = view.ResponderEphemeralPub, view.ResponderNonce, view.ResponderConfirmation
	} else {
		peerPubB64, peerNonceB64, peerConfirmB64 = view.InitiatorEphemeralPub, view.InitiatorNonce, view.InitiatorConfirmation
	}

	if peerPubB64 == "" || peerNonceB64 == "" {
		// Peer hasn't responded yet; nothing more to rehydrate.
		return pending, nil
	}
	peerPub, err := base64.StdEncoding.DecodeString(peerPubB64)
	if err != nil {
		return nil, fmt.Errorf("handshake: resume: decode peer public: %w", err)
	}
	peerNonce, err := base64.StdEncoding.DecodeString(peerNonceB64)
	if err != nil {
		return nil, fmt.Errorf("handshake: resume: decode peer nonce: %w", err)
	}

	var nonceA, nonceB []byte
	if role == RoleInitiator {
		nonceA, nonceB = pending.OwnNonce, peerNonce
	} else {
		nonceA, nonceB = peerNonce, pending.OwnNonce
	}
	if err := pending.CompleteKeySchedule(peerPub, nonceA, nonceB); err != nil {
		return nil, fmt.Errorf("handshake: resume: key schedule: %w", err)
	}

	if peerConfirmB64 != "" {
		peerTag, err := base64.StdEncoding.DecodeString(peerConfirmB64)
		if err != nil {
			return nil, fmt.Errorf("handshake: resume: decode peer confirmation: %w", err)
		}
		if err := pending.VerifyPeerConfirmation(peerTag); err != nil {
			return nil, err
		}
	}
	return pending, nil
}
