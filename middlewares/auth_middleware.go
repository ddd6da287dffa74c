package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/seblak-delivery/api/utils"
)

// AuthMiddleware validates the bearer token and stores the caller's id and
// role in the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid or expired token"))
			c.Abort()
			return
		}

		if claims.UserID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid user id in token"))
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", string(claims.Role))
		c.Next()
	}
}

// GetUserID reads the caller id set by AuthMiddleware.
func GetUserID(c *gin.Context) uint {
	val, _ := c.Get("userID")
	id, _ := val.(uint)
	return id
}

// GetRole reads the caller role set by AuthMiddleware.
func GetRole(c *gin.Context) string {
	val, _ := c.Get("role")
	role, _ := val.(string)
	return role
}
