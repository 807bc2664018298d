// Package routes wires gin route groups to the handler layer, grounded
// on the teacher's secure_comm_service/internal/routes.RegisterRoutes:
// one tollbooth limiter per endpoint group, bearer auth applied once at
// the group root.
package routes

import (
	tb "github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	toll_gin "github.com/didip/tollbooth_gin"
	"github.com/gin-gonic/gin"

	"github.com/relaycore/securemsg/config"
	"github.com/relaycore/securemsg/internal/handler"
	"github.com/relaycore/securemsg/internal/middleware"
)

func Register(r *gin.Engine, cfg *config.Config, h *handler.Handler, authMiddleware gin.HandlerFunc) {
	authGroup := r.Group("/")
	authGroup.Use(authMiddleware)

	hsLimiter := tb.NewLimiter(cfg.HSLimiter.RPC, &limiter.ExpirableOptions{DefaultExpirationTTL: cfg.HSLimiter.TTL})
	hsLimiter.SetBurst(cfg.HSLimiter.Burst)

	msgLimiter := tb.NewLimiter(cfg.MsgLimiter.RPC, &limiter.ExpirableOptions{DefaultExpirationTTL: cfg.MsgLimiter.TTL})
	msgLimiter.SetBurst(cfg.MsgLimiter.Burst)

	keysGroup := authGroup.Group("/keys/exchange")
	keysGroup.Use(middleware.MaxSizeMiddleware(middleware.MaxJSONBodySize))
	{
		keysGroup.POST("/initiate", toll_gin.LimitHandler(hsLimiter), h.Initiate)
		keysGroup.POST("/respond", toll_gin.LimitHandler(hsLimiter), h.Respond)
		keysGroup.POST("/confirm", toll_gin.LimitHandler(hsLimiter), h.Confirm)
		keysGroup.GET("/session/:id", h.Session)
		keysGroup.GET("/status/:id", h.Status)
		keysGroup.GET("/pending", h.Pending)
	}

	msgGroup := authGroup.Group("/messages")
	msgGroup.Use(middleware.MaxSizeMiddleware(middleware.MaxJSONBodySize))
	{
		msgGroup.POST("", toll_gin.LimitHandler(msgLimiter), h.SendMessage)
		msgGroup.GET("/conversation/:userId", h.Conversation)
	}
}
