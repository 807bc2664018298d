package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxJSONBodySize bounds ordinary handshake/message JSON bodies; the
// channel layer separately caps plaintext at 256 KiB (§4.3), so a
// base64 ciphertext body comfortably fits under 512 KiB of overhead.
const MaxJSONBodySize = 512 * 1024

// MaxSizeMiddleware rejects a request up front by Content-Length,
// before gin even reads the body, grounded on the teacher's
// MaxSizeMiddleware/MaxStreamMiddleware pair.
func MaxSizeMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"code":  "MessageTooLarge",
				"error": fmt.Sprintf("request body too large: max %d bytes allowed", limit),
			})
			return
		}
		c.Next()
	}
}
