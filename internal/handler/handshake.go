package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/relaycore/securemsg/internal/domain"
	"github.com/relaycore/securemsg/internal/dto"
	"github.com/relaycore/securemsg/internal/middleware"
)

// Initiate handles POST /keys/exchange/initiate (§6).
func (h *Handler) Initiate(c *gin.Context) {
	var req dto.InitiateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrMissingFields)
		return
	}
	callerID := middleware.CallerID(c)

	rec, err := h.Validator.ValidateInit(c.Request.Context(), callerID, &req, c.ClientIP())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.InitiateResp{SessionID: rec.SessionID})
}

// Respond handles POST /keys/exchange/respond (§6).
func (h *Handler) Respond(c *gin.Context) {
	var req dto.RespondReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrMissingFields)
		return
	}
	callerID := middleware.CallerID(c)

	rec, err := h.Validator.ValidateRespond(c.Request.Context(), callerID, &req, c.ClientIP())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RespondResp{
		SessionID:          rec.SessionID,
		InitiatorPublicKey: base64.StdEncoding.EncodeToString(rec.InitiatorEphemeralPub),
	})
}

// Confirm handles POST /keys/exchange/confirm (§6).
func (h *Handler) Confirm(c *gin.Context) {
	var req dto.ConfirmReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrMissingFields)
		return
	}
	callerID := middleware.CallerID(c)

	rec, err := h.Validator.ValidateConfirm(c.Request.Context(), callerID, &req, c.ClientIP())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ConfirmResp{Status: string(rec.Status)})
}

// Session handles GET /keys/exchange/session/{id} (§6). It omits
// sequence counters per the wire shape but includes both ephemeral
// keys, nonces, and confirmation blobs so a resuming client can rebuild
// its Pending state without ever having the relay compute anything
// cryptographic on its behalf.
func (h *Handler) Session(c *gin.Context) {
	sessionID := c.Param("id")
	callerID := middleware.CallerID(c)

	rec, err := h.Store.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, domain.ErrSessionNotFound)
		return
	}
	if callerID != rec.InitiatorID && callerID != rec.ResponderID {
		writeError(c, domain.ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, dto.SessionView{
		SessionID:             rec.SessionID,
		InitiatorID:           rec.InitiatorID,
		ResponderID:           rec.ResponderID,
		InitiatorEphemeralPub: base64.StdEncoding.EncodeToString(rec.InitiatorEphemeralPub),
		ResponderEphemeralPub: base64.StdEncoding.EncodeToString(rec.ResponderEphemeralPub),
		InitiatorNonce:        base64.StdEncoding.EncodeToString(rec.InitiatorNonce),
		ResponderNonce:        base64.StdEncoding.EncodeToString(rec.ResponderNonce),
		InitiatorConfirmation: base64.StdEncoding.EncodeToString(rec.InitiatorConfirmation),
		ResponderConfirmation: base64.StdEncoding.EncodeToString(rec.ResponderConfirmation),
		Status:                string(rec.Status),
		CreatedAt:             rec.CreatedAt.UnixMilli(),
		ExpiresAt:             rec.ExpiresAt.UnixMilli(),
	})
}

// Status handles GET /keys/exchange/status/{id} (§6): the lightweight
// poll endpoint a client calls repeatedly while waiting for the peer.
func (h *Handler) Status(c *gin.Context) {
	sessionID := c.Param("id")
	callerID := middleware.CallerID(c)

	rec, err := h.Store.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, domain.ErrSessionNotFound)
		return
	}
	if callerID != rec.InitiatorID && callerID != rec.ResponderID {
		writeError(c, domain.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, dto.StatusView{Status: string(rec.Status)})
}

// Pending handles GET /keys/exchange/pending (§6): every Initiated
// record addressed to the caller, so a responder can discover inbound
// handshakes without a push channel.
func (h *Handler) Pending(c *gin.Context) {
	callerID := middleware.CallerID(c)

	recs, err := h.Store.ListPendingForResponder(c.Request.Context(), callerID)
	if err != nil {
		writeError(c, domain.NewError(domain.CodeInternal, "handler.pending", err))
		return
	}
	out := make([]dto.PendingEntry, 0, len(recs))
	for _, rec := range recs {
		out = append(out, dto.PendingEntry{
			SessionID:   rec.SessionID,
			InitiatorID: rec.InitiatorID,
			CreatedAt:   rec.CreatedAt.UnixMilli(),
		})
	}
	c.JSON(http.StatusOK, out)
}
