package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/relaycore/securemsg/internal/domain"
	"github.com/relaycore/securemsg/internal/dto"
)

// statusFor maps a domain.Code to the HTTP status of §7. Handlers never
// write a raw Go error string to the wire — only the stable code and a
// short message.
func statusFor(code domain.Code) int {
	switch code {
	case domain.CodeMissingFields, domain.CodeInvalidEncoding:
		return http.StatusBadRequest
	case domain.CodeMessageTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.CodeTimestampExpired, domain.CodeSessionExpired:
		return http.StatusGone
	case domain.CodeConfirmationMismatch, domain.CodeInvalidSignature, domain.CodeAuthFailed:
		return http.StatusUnauthorized
	case domain.CodeUnauthorized:
		return http.StatusForbidden
	case domain.CodeUserNotFound, domain.CodeSessionNotFound, domain.CodeNoSigningKey:
		return http.StatusNotFound
	case domain.CodeInvalidStatus, domain.CodeReplayDetected:
		return http.StatusConflict
	case domain.CodeSealFailed, domain.CodeDerivationFailed, domain.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	msg := string(code)
	var de *domain.Error
	if errors.As(err, &de) && code != domain.CodeInternal && de.Op == "" && de.Err != nil {
		msg = de.Err.Error()
	}
	c.AbortWithStatusJSON(statusFor(code), dto.ErrorResp{Code: string(code), Error: msg})
}
