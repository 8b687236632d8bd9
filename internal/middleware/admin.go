package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminRequired must run after AuthRequired; it rejects every token that is not an admin's.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok || !claims.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
