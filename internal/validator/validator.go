// Package validator implements the relay-side gating logic of §4.4: it
// performs every client-driven handshake transition in the ledger. It is
// not the only writer: internal/janitor marks stale records Expired, and
// internal/handler stores messages (and their sequence counters) through
// ledger.Store.SaveMessage after ValidateMessage passes. It authenticates the
// caller, checks field presence and freshness, verifies signatures
// against the directory, gates on status, and enforces sequence
// monotonicity for channel messages. Every rejection is written to the
// audit log before the error is returned.
//
// It deliberately does NOT verify key-confirmation HMAC tags (§4.2's
// Confirm message): the relay never holds the raw ECDH shared secret,
// only the two parties do, so a forged confirmation blob would pass any
// check the relay could perform. Confirmation mismatch (P8) is a
// client-side-only detection, made by internal/handshake's
// Pending.VerifyPeerConfirmation. The relay's job for Confirm is purely
// authentication, status gating, and durable storage of the blob the
// caller submits.
package validator

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/relaycore/securemsg/internal/directory"
	"github.com/relaycore/securemsg/internal/domain"
	"github.com/relaycore/securemsg/internal/dto"
	"github.com/relaycore/securemsg/internal/clockwork"
	"github.com/relaycore/securemsg/internal/crypto"
	"github.com/relaycore/securemsg/internal/handshake"
	"github.com/relaycore/securemsg/internal/ledger"
	"github.com/relaycore/securemsg/internal/replay"
)

// DefaultFreshnessWindow is ±5 minutes per §4.4 item 3.
const DefaultFreshnessWindow = 5 * time.Minute

// DefaultSessionTTL is how long a handshake record lives before the
// janitor reclaims it (§3).
const DefaultSessionTTL = 10 * time.Minute

// Validator is the relay-side trust boundary.
type Validator struct {
	Dir             directory.Lookup
	Store           ledger.Store
	Clock           clockwork.Clock
	Nonces          *replay.NonceCache // optional defense-in-depth layer; nil disables the check
	FreshnessWindow time.Duration
	SessionTTL      time.Duration
}

// New builds a Validator with the default freshness window and TTL.
func New(dir directory.Lookup, store ledger.Store, clock clockwork.Clock) *Validator {
	return &Validator{
		Dir:             dir,
		Store:           store,
		Clock:           clock,
		FreshnessWindow: DefaultFreshnessWindow,
		SessionTTL:      DefaultSessionTTL,
	}
}

func (v *Validator) audit(ctx context.Context, eventType, sessionID, callerID, reason, ip string) {
	_ = v.Store.AppendAudit(ctx, &domain.AuditEntry{
		EventType: eventType,
		SessionID: sessionID,
		CallerID:  callerID,
		Reason:    reason,
		IP:        ip,
		Timestamp: v.Clock.Now(),
	})
}

func (v *Validator) reject(ctx context.Context, eventType, sessionID, callerID, ip string, err *domain.Error) error {
	v.audit(ctx, eventType, sessionID, callerID, err.Error(), ip)
	return err
}

// checkFreshness enforces §4.4 item 3: must run before any signature
// verification or ledger lookup (P3), so a stale replayed request never
// reaches the more expensive checks.
func (v *Validator) checkFreshness(timestampMillis int64) bool {
	ts := time.UnixMilli(timestampMillis)
	delta := v.Clock.Now().Sub(ts)
	if delta < 0 {
		delta = -delta
	}
	return delta <= v.FreshnessWindow
}

func decodeB64(s string) ([]byte, bool) {
	b, err := base64.StdEncoding.DecodeString(s)
	return b, err == nil
}

// ValidateInit implements the Init transition of §4.2/§4.4: callerID
// must equal req.initiatorId is not a wire field (the initiator is
// implicit, the caller), so the only identity check here is that the
// caller has a registered signing key and the responder exists. On
// success it builds and persists a new StatusInitiated record.
func (v *Validator) ValidateInit(ctx context.Context, callerID string, req *dto.InitiateReq, ip string) (*domain.HandshakeRecord, error) {
	if req.ResponderID == "" || req.EphemeralPublic == "" || req.Nonce == "" || req.Signature == "" || req.Timestamp == 0 {
		return nil, v.reject(ctx, "init_rejected", "", callerID, ip, domain.ErrMissingFields)
	}
	ephPub, ok1 := decodeB64(req.EphemeralPublic)
	nonce, ok2 := decodeB64(req.Nonce)
	sig, ok3 := decodeB64(req.Signature)
	if !ok1 || !ok2 || !ok3 {
		return nil, v.reject(ctx, "init_rejected", "", callerID, ip, domain.NewError(domain.CodeInvalidEncoding, "validator.init", nil))
	}
	if !v.checkFreshness(req.Timestamp) {
		return nil, v.reject(ctx, "init_rejected", "", callerID, ip, domain.ErrTimestampExpired)
	}

	pub, err := v.Dir.SigningKey(ctx, callerID)
	if err == directory.ErrNotFound {
		return nil, v.reject(ctx, "init_rejected", "", callerID, ip, domain.ErrNoSigningKey)
	} else if err != nil {
		return nil, v.reject(ctx, "init_rejected", "", callerID, ip, domain.NewError(domain.CodeInternal, "validator.init", err))
	}
	if _, err := v.Dir.SigningKey(ctx, req.ResponderID); err == directory.ErrNotFound {
		return nil, v.reject(ctx, "init_rejected", "", callerID, ip, domain.ErrUserNotFound)
	}

	payload, err := handshake.InitPayload(req.ResponderID, ephPub, nonce, req.Timestamp)
	if err != nil {
		return nil, v.reject(ctx, "init_rejected", "", callerID, ip, domain.NewError(domain.CodeInternal, "validator.init", err))
	}
	if !crypto.VerifyPSS(pub, payload, sig) {
		return nil, v.reject(ctx, "init_rejected", "", callerID, ip, domain.ErrInvalidSignature)
	}

	now := v.Clock.Now()
	sessionID := handshake.MintSessionID(callerID, req.ResponderID, now.UnixMilli())
	rec := &domain.HandshakeRecord{
		SessionID:             sessionID,
		InitiatorID:           callerID,
		ResponderID:           req.ResponderID,
		InitiatorEphemeralPub: ephPub,
		InitiatorNonce:        nonce,
		InitiatorSignature:    sig,
		Status:                domain.StatusInitiated,
		CreatedAt:             now,
		ExpiresAt:             now.Add(v.SessionTTL),
		Version:               1,
	}
	if err := v.Store.Create(ctx, rec); err != nil {
		if err == ledger.ErrAlreadyExists {
			return nil, v.reject(ctx, "init_rejected", sessionID, callerID, ip, domain.NewError(domain.CodeInvalidStatus, "validator.init", err))
		}
		return nil, v.reject(ctx, "init_rejected", sessionID, callerID, ip, domain.NewError(domain.CodeInternal, "validator.init", err))
	}
	v.audit(ctx, "init_accepted", sessionID, callerID, "", ip)
	return rec, nil
}

// ValidateRespond implements the Respond transition. callerID must equal
// the record's ResponderID (§4.4 item 1) and the record must be in
// StatusInitiated (§4.4 item 5).
func (v *Validator) ValidateRespond(ctx context.Context, callerID string, req *dto.RespondReq, ip string) (*domain.HandshakeRecord, error) {
	if req.SessionID == "" || req.EphemeralPublic == "" || req.Nonce == "" || req.Signature == "" || req.Timestamp == 0 {
		return nil, v.reject(ctx, "respond_rejected", req.SessionID, callerID, ip, domain.ErrMissingFields)
	}
	ephPub, ok1 := decodeB64(req.EphemeralPublic)
	nonce, ok2 := decodeB64(req.Nonce)
	sig, ok3 := decodeB64(req.Signature)
	if !ok1 || !ok2 || !ok3 {
		return nil, v.reject(ctx, "respond_rejected", req.SessionID, callerID, ip, domain.NewError(domain.CodeInvalidEncoding, "validator.respond", nil))
	}
	if !v.checkFreshness(req.Timestamp) {
		return nil, v.reject(ctx, "respond_rejected", req.SessionID, callerID, ip, domain.ErrTimestampExpired)
	}

	rec, err := v.Store.Get(ctx, req.SessionID)
	if err == ledger.ErrNotFound {
		return nil, v.reject(ctx, "respond_rejected", req.SessionID, callerID, ip, domain.ErrSessionNotFound)
	} else if err != nil {
		return nil, v.reject(ctx, "respond_rejected", req.SessionID, callerID, ip, domain.NewError(domain.CodeInternal, "validator.respond", err))
	}
	if rec.ResponderID != callerID {
		return nil, v.reject(ctx, "respond_rejected", req.SessionID, callerID, ip, domain.ErrUnauthorized)
	}
	if v.expireIfPast(ctx, rec) {
		return nil, v.reject(ctx, "respond_rejected", req.SessionID, callerID, ip, domain.ErrSessionExpired)
	}
	if rec.Status != domain.StatusInitiated {
		return nil, v.reject(ctx, "respond_rejected", req.SessionID, callerID, ip, domain.ErrInvalidStatus)
	}

	pub, err := v.Dir.SigningKey(ctx, callerID)
	if err == directory.ErrNotFound {
		return nil, v.reject(ctx, "respond_rejected", req.SessionID, callerID, ip, domain.ErrNoSigningKey)
	} else if err != nil {
		return nil, v.reject(ctx, "respond_rejected", req.SessionID, callerID, ip, domain.NewError(domain.CodeInternal, "validator.respond", err))
	}

	payload, err := handshake.RespondPayload(req.SessionID, ephPub, nonce, req.Timestamp)
	if err != nil {
		return nil, v.reject(ctx, "respond_rejected", req.SessionID, callerID, ip, domain.NewError(domain.CodeInternal, "validator.respond", err))
	}
	if !crypto.VerifyPSS(pub, payload, sig) {
		return nil, v.reject(ctx, "respond_rejected", req.SessionID, callerID, ip, domain.ErrInvalidSignature)
	}

	rec.ResponderEphemeralPub = ephPub
	rec.ResponderNonce = nonce
	rec.ResponderSignature = sig
	rec.Status = domain.StatusResponded

	if err := v.Store.Update(ctx, rec); err != nil {
		if err == ledger.ErrVersionConflict {
			return nil, v.reject(ctx, "respond_rejected", req.SessionID, callerID, ip, domain.ErrInvalidStatus)
		}
		return nil, v.reject(ctx, "respond_rejected", req.SessionID, callerID, ip, domain.NewError(domain.CodeInternal, "validator.respond", err))
	}
	v.audit(ctx, "respond_accepted", req.SessionID, callerID, "", ip)
	return rec, nil
}

// ValidateConfirm implements the Confirm transition. It authenticates
// and gates but, per the package doc, never attempts to verify the
// confirmation tag cryptographically — it only stores it. A caller may
// confirm at most once; confirming twice is CodeInvalidStatus.
func (v *Validator) ValidateConfirm(ctx context.Context, callerID string, req *dto.ConfirmReq, ip string) (*domain.HandshakeRecord, error) {
	if req.SessionID == "" || req.Confirmation == "" {
		return nil, v.reject(ctx, "confirm_rejected", req.SessionID, callerID, ip, domain.ErrMissingFields)
	}
	tag, ok := decodeB64(req.Confirmation)
	if !ok {
		return nil, v.reject(ctx, "confirm_rejected", req.SessionID, callerID, ip, domain.NewError(domain.CodeInvalidEncoding, "validator.confirm", nil))
	}

	rec, err := v.Store.Get(ctx, req.SessionID)
	if err == ledger.ErrNotFound {
		return nil, v.reject(ctx, "confirm_rejected", req.SessionID, callerID, ip, domain.ErrSessionNotFound)
	} else if err != nil {
		return nil, v.reject(ctx, "confirm_rejected", req.SessionID, callerID, ip, domain.NewError(domain.CodeInternal, "validator.confirm", err))
	}
	if callerID != rec.InitiatorID && callerID != rec.ResponderID {
		return nil, v.reject(ctx, "confirm_rejected", req.SessionID, callerID, ip, domain.ErrUnauthorized)
	}
	if req.IsInitiator && callerID != rec.InitiatorID {
		return nil, v.reject(ctx, "confirm_rejected", req.SessionID, callerID, ip, domain.ErrUnauthorized)
	}
	if !req.IsInitiator && callerID != rec.ResponderID {
		return nil, v.reject(ctx, "confirm_rejected", req.SessionID, callerID, ip, domain.ErrUnauthorized)
	}
	if v.expireIfPast(ctx, rec) {
		return nil, v.reject(ctx, "confirm_rejected", req.SessionID, callerID, ip, domain.ErrSessionExpired)
	}
	if rec.Status != domain.StatusResponded && rec.Status != domain.StatusConfirmed {
		return nil, v.reject(ctx, "confirm_rejected", req.SessionID, callerID, ip, domain.ErrInvalidStatus)
	}

	if req.IsInitiator {
		if len(rec.InitiatorConfirmation) > 0 {
			return nil, v.reject(ctx, "confirm_rejected", req.SessionID, callerID, ip, domain.ErrInvalidStatus)
		}
		rec.InitiatorConfirmation = tag
	} else {
		if len(rec.ResponderConfirmation) > 0 {
			return nil, v.reject(ctx, "confirm_rejected", req.SessionID, callerID, ip, domain.ErrInvalidStatus)
		}
		rec.ResponderConfirmation = tag
	}

	if len(rec.InitiatorConfirmation) > 0 && len(rec.ResponderConfirmation) > 0 {
		rec.Status = domain.StatusCompleted
		rec.CompletedAt = v.Clock.Now()
	} else {
		rec.Status = domain.StatusConfirmed
	}

	if err := v.Store.Update(ctx, rec); err != nil {
		if err == ledger.ErrVersionConflict {
			return nil, v.reject(ctx, "confirm_rejected", req.SessionID, callerID, ip, domain.ErrInvalidStatus)
		}
		return nil, v.reject(ctx, "confirm_rejected", req.SessionID, callerID, ip, domain.NewError(domain.CodeInternal, "validator.confirm", err))
	}
	v.audit(ctx, "confirm_accepted", req.SessionID, callerID, "", ip)
	return rec, nil
}

// expireIfPast transitions rec to StatusExpired and persists it if its
// expires_at has passed and it is not already Completed. It returns true
// when the record is (now) expired, so callers can reject the request.
func (v *Validator) expireIfPast(ctx context.Context, rec *domain.HandshakeRecord) bool {
	if rec.Status == domain.StatusCompleted || rec.Terminal() {
		return rec.Status == domain.StatusExpired
	}
	if !v.Clock.Now().After(rec.ExpiresAt) {
		return false
	}
	rec.Status = domain.StatusExpired
	_ = v.Store.Update(ctx, rec)
	return true
}

// ValidateMessage implements the channel-message gating of §4.4 item 7:
// the session must be Completed and the submitted sequence_number must
// be exactly the sender's current counter plus one.
func (v *Validator) ValidateMessage(ctx context.Context, callerID string, req *dto.SendMessageReq, ip string) (*domain.HandshakeRecord, error) {
	if req.To == "" || req.SessionID == "" || req.Ciphertext == "" || req.IV == "" || req.Nonce == "" || req.Timestamp == 0 {
		return nil, v.reject(ctx, "message_rejected", req.SessionID, callerID, ip, domain.ErrMissingFields)
	}
	if !v.checkFreshness(req.Timestamp) {
		return nil, v.reject(ctx, "message_rejected", req.SessionID, callerID, ip, domain.ErrTimestampExpired)
	}
	nonce, ok := decodeB64(req.Nonce)
	if !ok {
		return nil, v.reject(ctx, "message_rejected", req.SessionID, callerID, ip, domain.NewError(domain.CodeInvalidEncoding, "validator.message", nil))
	}
	if v.Nonces != nil && v.Nonces.Seen(ctx, nonce) {
		return nil, v.reject(ctx, "message_rejected", req.SessionID, callerID, ip, domain.ErrReplayDetected)
	}

	rec, err := v.Store.Get(ctx, req.SessionID)
	if err == ledger.ErrNotFound {
		return nil, v.reject(ctx, "message_rejected", req.SessionID, callerID, ip, domain.ErrSessionNotFound)
	} else if err != nil {
		return nil, v.reject(ctx, "message_rejected", req.SessionID, callerID, ip, domain.NewError(domain.CodeInternal, "validator.message", err))
	}
	if callerID != rec.InitiatorID && callerID != rec.ResponderID {
		return nil, v.reject(ctx, "message_rejected", req.SessionID, callerID, ip, domain.ErrUnauthorized)
	}
	if rec.Status != domain.StatusCompleted {
		return nil, v.reject(ctx, "message_rejected", req.SessionID, callerID, ip, domain.ErrInvalidStatus)
	}

	expected := rec.InitiatorLastSequence + 1
	if callerID != rec.InitiatorID {
		expected = rec.ResponderLastSequence + 1
	}
	if req.SequenceNumber != expected {
		return nil, v.reject(ctx, "message_rejected", req.SessionID, callerID, ip, domain.ErrReplayDetected)
	}
	if v.Nonces != nil {
		v.Nonces.Remember(ctx, nonce)
	}
	return rec, nil
}
