package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seblak-delivery/api/models"
	"github.com/seblak-delivery/api/utils"
)

var errAccessDenied = errors.New("access denied")

// RequireRole gates an endpoint to a single role. Admin always passes.
func RequireRole(role models.UserRole) gin.HandlerFunc {
	return RequireRoles(role)
}

// RequireRoles gates an endpoint to any of the given roles. Admin always
// passes.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole := models.UserRole(GetRole(c))
		if callerRole == models.RoleAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		utils.RespondError(c, http.StatusForbidden, errAccessDenied)
		c.Abort()
	}
}
