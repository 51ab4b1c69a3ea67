// Package ginutil holds the small helpers shared by the gin handlers:
// uniform JSON error responses and the named rate-limit gate.
package ginutil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Rate-limit bucket names, one per endpoint.
const (
	RLTrialActivate   = "trial_activate"
	RLPremiumActivate = "premium_activate"
	RLPremiumRecheck  = "premium_recheck"
	RLNotifySend      = "notify_send"
)

// RateLimiter gates requests per named bucket and key. Implementations live
// under ratelimit/.
type RateLimiter interface {
	AllowNamed(bucket, key string) (bool, error)
}

// AllowNamed applies the limiter keyed by client IP. A limiter failure never
// blocks traffic; limiting is an operational guard, not a correctness gate.
func AllowNamed(c *gin.Context, rl RateLimiter, bucket string) bool {
	if rl == nil {
		return true
	}
	ok, err := rl.AllowNamed(bucket, c.ClientIP())
	if err != nil {
		return true
	}
	return ok
}

func BadRequest(c *gin.Context, code string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": code})
}

func Unauthorized(c *gin.Context, code string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": code})
}

func Forbidden(c *gin.Context, code string) {
	c.JSON(http.StatusForbidden, gin.H{"error": code})
}

func ServerErr(c *gin.Context, code string) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": code})
}

func TooMany(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
}
