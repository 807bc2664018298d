package handshake

import (
	"encoding/base64"

	"github.com/relaycore/securemsg/internal/crypto"
	"github.com/relaycore/securemsg/internal/domain"
	"github.com/relaycore/securemsg/internal/dto"
	"github.com/relaycore/securemsg/internal/identity"
)

// Client drives the three-message protocol from one party's side,
// producing the wire DTOs of §6 and maintaining the Pending state each
// step needs. It never talks to the network directly — callers own the
// Transport round-trip and feed responses back in.
type Client struct {
	Self *identity.Identity
}

// NewClient builds a Client for self.
func NewClient(self *identity.Identity) *Client {
	return &Client{Self: self}
}

// BeginInit builds the Init message (§4.2 "A: generate..."). It returns
// the Pending to register in the client's ActiveMap and the request to
// send to POST /keys/exchange/initiate.
func (c *Client) BeginInit(responderID string, nowMillis int64) (*Pending, *dto.InitiateReq, error) {
	eph, err := crypto.GenerateEphemeral()
	if err != nil {
		return nil, nil, err
	}
	nonce, err := crypto.RandomBytes(32)
	if err != nil {
		return nil, nil, err
	}

	payload, err := InitPayload(responderID, eph.Public, nonce, nowMillis)
	if err != nil {
		return nil, nil, err
	}
	sig, err := crypto.SignPSS(c.Self.SigningPriv, payload)
	if err != nil {
		return nil, nil, err
	}

	pending := &Pending{
		Role:          RoleInitiator,
		PeerID:        responderID,
		EphemeralPriv: eph.Private,
		OwnNonce:      nonce,
	}
	req := &dto.InitiateReq{
		ResponderID:     responderID,
		EphemeralPublic: base64.StdEncoding.EncodeToString(eph.Public),
		Nonce:           base64.StdEncoding.EncodeToString(nonce),
		Timestamp:       nowMillis,
		Signature:       base64.StdEncoding.EncodeToString(sig),
	}
	return pending, req, nil
}

// BeginRespond builds the Respond message for a session the responder
// learned about from GET /keys/exchange/pending or a direct session_id.
func (c *Client) BeginRespond(sessionID string, nowMillis int64) (*Pending, *dto.RespondReq, error) {
	eph, err := crypto.GenerateEphemeral()
	if err != nil {
		return nil, nil, err
	}
	nonce, err := crypto.RandomBytes(32)
	if err != nil {
		return nil, nil, err
	}

	payload, err := RespondPayload(sessionID, eph.Public, nonce, nowMillis)
	if err != nil {
		return nil, nil, err
	}
	sig, err := crypto.SignPSS(c.Self.SigningPriv, payload)
	if err != nil {
		return nil, nil, err
	}

	pending := &Pending{
		SessionID:     sessionID,
		Role:          RoleResponder,
		EphemeralPriv: eph.Private,
		OwnNonce:      nonce,
	}
	req := &dto.RespondReq{
		SessionID:       sessionID,
		EphemeralPublic: base64.StdEncoding.EncodeToString(eph.Public),
		Nonce:           base64.StdEncoding.EncodeToString(nonce),
		Timestamp:       nowMillis,
		Signature:       base64.StdEncoding.EncodeToString(sig),
	}
	return pending, req, nil
}

// CompleteKeySchedule derives the shared secret and session key once
// both ephemeral public values and both nonces are known (§4.2 "Both
// sides compute..."). nonceA/nonceB must be passed in the fixed
// initiator-then-responder order regardless of which role the caller
// plays (§9 Open Questions).
func (p *Pending) CompleteKeySchedule(peerPublic []byte, nonceA, nonceB []byte) error {
	z, err := crypto.DeriveShared(p.EphemeralPriv, peerPublic)
	if err != nil {
		return err
	}
	key, err := DeriveSessionKey(z, nonceA, nonceB)
	if err != nil {
		return err
	}
	p.PeerPublic = peerPublic
	p.SharedSecret = z
	p.SessionKey = key
	return nil
}

// BuildConfirm computes this party's confirmation tag and the request
// to send to POST /keys/exchange/confirm.
func (p *Pending) BuildConfirm() *dto.ConfirmReq {
	tag := ComputeConfirmation(p.SharedSecret, p.SessionID, p.Role)
	p.OwnConfirmed = true
	return &dto.ConfirmReq{
		SessionID:    p.SessionID,
		Confirmation: base64.StdEncoding.EncodeToString(tag),
		IsInitiator:  p.Role == RoleInitiator,
	}
}

// VerifyPeerConfirmation checks the peer's confirmation tag against the
// value this party independently computes. A mismatch is the MITM
// signal of P8/§7 — the caller must discard the session key and never
// hand it to the secure channel.
func (p *Pending) VerifyPeerConfirmation(peerTag []byte) error {
	peerRole := RoleResponder
	if p.Role == RoleResponder {
		peerRole = RoleInitiator
	}
	if !VerifyConfirmation(p.SharedSecret, p.SessionID, peerRole, peerTag) {
		return domain.ErrConfirmationMismatch
	}
	p.PeerConfirmed = true
	return nil
}

// Ready reports whether both confirmations are present, the point at
// which the session key may be stored and handed to the secure channel
// (§4.2 edge cases: "premature storage before confirmation is forbidden").
func (p *Pending) Ready() bool {
	return p.OwnConfirmed && p.PeerConfirmed
}
