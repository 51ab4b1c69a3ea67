package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/PaulFidika/subkit/adapters/ginutil"
	"github.com/PaulFidika/subkit/core"
)

// respondErr maps service errors onto the client-facing taxonomy. Anything
// outside the sentinel classes is a generic server failure; the wrapped
// detail stays in the logs.
func respondErr(c *gin.Context, err error, generic string) {
	switch {
	case errors.Is(err, core.ErrAlreadyActivated):
		ginutil.BadRequest(c, "already_activated")
	case errors.Is(err, core.ErrMissingField):
		ginutil.BadRequest(c, "missing_field")
	case errors.Is(err, core.ErrInvalidToken):
		ginutil.Unauthorized(c, "authentication_failed")
	case errors.Is(err, core.ErrNoEntitlement):
		ginutil.Forbidden(c, "no_active_entitlement")
	default:
		ginutil.ServerErr(c, generic)
	}
}
