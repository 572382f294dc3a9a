package middleware

import (
	"net/http"

	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/gin-gonic/gin"
)

// AdminMiddleware must run after AuthMiddleware. It lets only
// administrators through.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get role from AuthMiddleware
		raw, exists := c.Get(ContextUserRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found in context (AuthMiddleware must run first)"})
			return
		}

		// 2. Check permission
		if role, _ := raw.(models.Role); role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: Admin role required"})
			return
		}

		c.Next()
	}
}
