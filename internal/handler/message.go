package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/relaycore/securemsg/internal/domain"
	"github.com/relaycore/securemsg/internal/dto"
	"github.com/relaycore/securemsg/internal/middleware"
)

// SendMessage handles POST /messages (§6): store one opaque ciphertext
// envelope after the validator confirms the session is Completed and
// the sequence number is the sender's next one.
func (h *Handler) SendMessage(c *gin.Context) {
	var req dto.SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrMissingFields)
		return
	}
	callerID := middleware.CallerID(c)

	rec, err := h.Validator.ValidateMessage(c.Request.Context(), callerID, &req, c.ClientIP())
	if err != nil {
		writeError(c, err)
		return
	}

	ciphertext, ok1 := decode(req.Ciphertext)
	iv, ok2 := decode(req.IV)
	if !ok1 || !ok2 {
		writeError(c, domain.NewError(domain.CodeInvalidEncoding, "handler.sendMessage", nil))
		return
	}

	msg := &domain.MessageRecord{
		ID:             uuid.NewString(),
		From:           callerID,
		To:             req.To,
		SessionID:      rec.SessionID,
		Ciphertext:     ciphertext,
		IV:             iv,
		MessageType:    domain.MessageType(req.MessageType),
		SequenceNumber: req.SequenceNumber,
		ServerTime:     h.Validator.Clock.Now(),
	}
	if req.FileMetadata != nil {
		msg.FileMetadata = &domain.FileMetadata{
			FileID:     req.FileMetadata.FileID,
			ChunkIndex: req.FileMetadata.ChunkIndex,
			ChunkCount: req.FileMetadata.ChunkCount,
		}
		if len(req.FileMetadata.WrappedKeys) > 0 {
			msg.FileMetadata.WrappedKeys = make(map[string][]byte, len(req.FileMetadata.WrappedKeys))
			for user, wrapped := range req.FileMetadata.WrappedKeys {
				raw, ok := decode(wrapped)
				if !ok {
					writeError(c, domain.NewError(domain.CodeInvalidEncoding, "handler.sendMessage", nil))
					return
				}
				msg.FileMetadata.WrappedKeys[user] = raw
			}
		}
	}

	if err := h.Store.SaveMessage(c.Request.Context(), msg); err != nil {
		writeError(c, domain.NewError(domain.CodeInternal, "handler.sendMessage", err))
		return
	}
	c.JSON(http.StatusCreated, dto.SendMessageResp{MessageID: msg.ID, Timestamp: req.Timestamp})
}

// Conversation handles GET /messages/conversation/{userId} (§6).
func (h *Handler) Conversation(c *gin.Context) {
	peerID := c.Param("userId")
	callerID := middleware.CallerID(c)

	msgs, err := h.Store.Conversation(c.Request.Context(), callerID, peerID)
	if err != nil {
		writeError(c, domain.NewError(domain.CodeInternal, "handler.conversation", err))
		return
	}
	out := make([]dto.MessageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, dto.MessageView{
			MessageID:      m.ID,
			From:           m.From,
			To:             m.To,
			SessionID:      m.SessionID,
			Ciphertext:     base64.StdEncoding.EncodeToString(m.Ciphertext),
			IV:             base64.StdEncoding.EncodeToString(m.IV),
			MessageType:    string(m.MessageType),
			SequenceNumber: m.SequenceNumber,
			Timestamp:      m.ServerTime.UnixMilli(),
		})
	}
	c.JSON(http.StatusOK, out)
}

func decode(s string) ([]byte, bool) {
	b, err := base64.StdEncoding.DecodeString(s)
	return b, err == nil
}
