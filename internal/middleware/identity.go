package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/threadpost/threadpost-backend/internal/common"
)

const userIDKey = "user_id"

// RequireIdentity reads the pre-verified caller identity from X-User-ID.
// Authentication happens upstream of this service; the store only needs a
// caller identity to attribute writes to.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "caller identity required")
			c.Abort()
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// GetUserID returns the caller identity set by RequireIdentity
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
