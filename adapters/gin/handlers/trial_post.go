package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PaulFidika/subkit/adapters/ginutil"
	"github.com/PaulFidika/subkit/core"
)

func HandleTrialPOST(svc *core.Service, rl ginutil.RateLimiter) gin.HandlerFunc {
	type trialReq struct {
		IDToken string `json:"idToken"`
	}
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLTrialActivate) {
			ginutil.TooMany(c)
			return
		}
		var req trialReq
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.IDToken) == "" {
			ginutil.BadRequest(c, "no_id_token")
			return
		}
		res, err := svc.ActivateTrial(c.Request.Context(), req.IDToken)
		if err != nil {
			respondErr(c, err, "failed_to_set_trial")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "trialExpireDate": res.TrialExpireDate})
	}
}
