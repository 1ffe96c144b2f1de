package middleware

import (
	"net/http"

	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// RequirePermission aborts with 403 unless the caller's role may perform
// action on resource.
func RequirePermission(authzService *service.AuthorizationService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetUserFromContext(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			return
		}

		allowed, err := authzService.CheckPermission(user, resource, action)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authorization check failed"})
			return
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "Access denied",
				"resource": resource,
				"action":   action,
			})
			return
		}

		c.Next()
	}
}
