// Package middleware carries the gin middleware stack: caller
// authentication and request-size bounds, grounded on the teacher's
// JWTMiddleware/MaxSizeMiddleware. Rate limiting is not in this package;
// internal/routes attaches tollbooth limiters directly.
package middleware

import (
	"crypto/rsa"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
)

// CallerIDKey is the gin context key BearerAuth sets on success; every
// handler that needs the authenticated caller (§4.4 item 1) reads it
// through CallerID below instead of the raw header.
const CallerIDKey = "callerID"

// BearerAuth verifies the Authorization: Bearer <jwt> header against
// pub and stores the token's "sub" claim as the caller's user id. It is
// the relay's sole source of caller identity — handlers never trust a
// user id embedded in a request body.
func BearerAuth(pub *rsa.PublicKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "Unauthorized", "error": "missing or malformed authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return pub, nil
		})
		if err != nil || !token.Valid {
			logrus.WithError(err).Warn("bearer token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "Unauthorized", "error": "invalid token"})
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "Unauthorized", "error": "invalid token claims"})
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "Unauthorized", "error": "token missing sub claim"})
			return
		}
		c.Set(CallerIDKey, sub)
		c.Next()
	}
}

// CallerID reads the user id BearerAuth set on this request.
func CallerID(c *gin.Context) string {
	v, _ := c.Get(CallerIDKey)
	id, _ := v.(string)
	return id
}
