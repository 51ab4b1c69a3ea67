package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PaulFidika/subkit/adapters/ginutil"
	"github.com/PaulFidika/subkit/core"
)

func HandleNotifyPOST(svc *core.Service, rl ginutil.RateLimiter) gin.HandlerFunc {
	type notifyReq struct {
		IDToken     string   `json:"idToken"`
		UserUids    []string `json:"userUids"`
		ChecklistID string   `json:"checklistId"`
		Content     struct {
			Titles   map[string]string `json:"titles"`
			Messages map[string]string `json:"messages"`
		} `json:"content"`
	}
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLNotifySend) {
			ginutil.TooMany(c)
			return
		}
		var req notifyReq
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.IDToken) == "" {
			ginutil.BadRequest(c, "no_id_token")
			return
		}
		res, err := svc.Notify(c.Request.Context(), req.IDToken, core.NotifyInput{
			RecipientUIDs: req.UserUids,
			Titles:        req.Content.Titles,
			Messages:      req.Content.Messages,
			ChecklistID:   req.ChecklistID,
		})
		if err != nil {
			respondErr(c, err, "failed_to_send_notification")
			return
		}
		// Relay the dispatch provider's response verbatim.
		c.Data(res.StatusCode, "application/json", res.Body)
	}
}
