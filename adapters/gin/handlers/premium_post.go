package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PaulFidika/subkit/adapters/ginutil"
	"github.com/PaulFidika/subkit/core"
)

func HandlePremiumPOST(svc *core.Service, rl ginutil.RateLimiter) gin.HandlerFunc {
	type premiumReq struct {
		IDToken string `json:"idToken"`
	}
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLPremiumActivate) {
			ginutil.TooMany(c)
			return
		}
		var req premiumReq
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.IDToken) == "" {
			ginutil.BadRequest(c, "no_id_token")
			return
		}
		res, err := svc.ActivatePremium(c.Request.Context(), req.IDToken)
		if err != nil {
			respondErr(c, err, "failed_to_check_premium")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "hasPremium": res.HasPremium})
	}
}
