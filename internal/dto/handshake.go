// Package dto holds the wire request/response shapes of §6. Field
// names match the spec exactly; all byte fields are base64 strings and
// all timestamps are integer milliseconds since epoch.
package dto

// InitiateReq is POST /keys/exchange/initiate.
type InitiateReq struct {
	ResponderID     string `json:"responderId" binding:"required"`
	EphemeralPublic string `json:"ephemeralPublic" binding:"required,base64"`
	Nonce           string `json:"nonce" binding:"required,base64"`
	Timestamp       int64  `json:"timestamp" binding:"required"`
	Signature       string `json:"signature" binding:"required,base64"`
}

// InitiateResp is the 201 response of POST /keys/exchange/initiate.
type InitiateResp struct {
	SessionID string `json:"sessionId"`
}

// RespondReq is POST /keys/exchange/respond.
type RespondReq struct {
	SessionID       string `json:"sessionId" binding:"required"`
	EphemeralPublic string `json:"ephemeralPublic" binding:"required,base64"`
	Nonce           string `json:"nonce" binding:"required,base64"`
	Timestamp       int64  `json:"timestamp" binding:"required"`
	Signature       string `json:"signature" binding:"required,base64"`
}

// RespondResp is the 200 response of POST /keys/exchange/respond.
type RespondResp struct {
	SessionID        string `json:"sessionId"`
	InitiatorPublicKey string `json:"initiatorPublicKey"`
}

// ConfirmReq is POST /keys/exchange/confirm.
type ConfirmReq struct {
	SessionID    string `json:"sessionId" binding:"required"`
	Confirmation string `json:"confirmation" binding:"required,base64"`
	IsInitiator  bool   `json:"isInitiator"`
}

// ConfirmResp is the 200 response of POST /keys/exchange/confirm.
type ConfirmResp struct {
	Status string `json:"status"`
}

// SessionView is the GET /keys/exchange/session/{id} response: the
// handshake record excluding sequence counters (§6).
type SessionView struct {
	SessionID              string `json:"sessionId"`
	InitiatorID            string `json:"initiatorId"`
	ResponderID            string `json:"responderId"`
	InitiatorEphemeralPub  string `json:"initiatorEphemeralPublic,omitempty"`
	ResponderEphemeralPub  string `json:"responderEphemeralPublic,omitempty"`
	InitiatorNonce         string `json:"initiatorNonce,omitempty"`
	ResponderNonce         string `json:"responderNonce,omitempty"`
	InitiatorConfirmation  string `json:"initiatorConfirmation,omitempty"`
	ResponderConfirmation  string `json:"responderConfirmation,omitempty"`
	Status                 string `json:"status"`
	CreatedAt              int64  `json:"createdAt"`
	ExpiresAt              int64  `json:"expiresAt"`
}

// StatusView is the GET /keys/exchange/status/{id} response.
type StatusView struct {
	Status string `json:"status"`
}

// PendingEntry is one element of GET /keys/exchange/pending.
type PendingEntry struct {
	SessionID   string `json:"sessionId"`
	InitiatorID string `json:"initiatorId"`
	CreatedAt   int64  `json:"createdAt"`
}

// ErrorResp is the uniform error body; Code is one of the stable
// strings in §7.
type ErrorResp struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
