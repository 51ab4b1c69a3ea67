package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PaulFidika/subkit/adapters/ginutil"
	"github.com/PaulFidika/subkit/core"
)

func HandlePremiumPUT(svc *core.Service, rl ginutil.RateLimiter) gin.HandlerFunc {
	type recheckReq struct {
		IDToken string `json:"idToken"`
	}
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLPremiumRecheck) {
			ginutil.TooMany(c)
			return
		}
		var req recheckReq
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.IDToken) == "" {
			ginutil.BadRequest(c, "no_id_token")
			return
		}
		res, err := svc.RevalidatePremium(c.Request.Context(), req.IDToken)
		if err != nil {
			respondErr(c, err, "failed_to_recheck_premium")
			return
		}
		if res.Skipped {
			c.JSON(http.StatusOK, gin.H{"skipped": true, "reason": res.Reason})
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": true, "hasPremium": res.HasPremium})
	}
}
