package middleware

import (
	"crypto/subtle"
	"net/http"

	"tripscout/config"

	"github.com/gin-gonic/gin"
)

// RequireAPISecret guards the API with the shared secret the web frontend
// sends in the x-api-secret header.
func RequireAPISecret(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("x-api-secret")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(cfg.APISecret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
