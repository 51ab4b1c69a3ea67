// Package subgin wires the entitlement service into a gin engine.
package subgin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/PaulFidika/subkit/adapters/gin/handlers"
	"github.com/PaulFidika/subkit/adapters/ginutil"
	"github.com/PaulFidika/subkit/core"
)

// RequestID tags every request with an id, honoring one supplied upstream.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// AccessLog emits one structured line per request.
func AccessLog(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": c.GetString("request_id"),
		}).Info("request")
	}
}

// Register mounts the four entitlement endpoints and a liveness probe.
func Register(r *gin.Engine, svc *core.Service, rl ginutil.RateLimiter) {
	r.POST("/trial", handlers.HandleTrialPOST(svc, rl))
	r.POST("/premium", handlers.HandlePremiumPOST(svc, rl))
	r.PUT("/premium", handlers.HandlePremiumPUT(svc, rl))
	r.POST("/notify", handlers.HandleNotifyPOST(svc, rl))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
}
