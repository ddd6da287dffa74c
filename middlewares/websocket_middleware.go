package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/seblak-delivery/api/utils"
)

// WebSocketAuthMiddleware authenticates websocket upgrades. Browsers cannot
// set the Authorization header on the upgrade request, so the token is read
// from the query string.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", string(claims.Role))
		c.Next()
	}
}
