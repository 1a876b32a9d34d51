package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// IDHeaderName carries the shared client identifier checked by CheckIDHeader.
const IDHeaderName = "X-Discover-Identifier"

// CheckIDHeader rejects requests whose identifier header does not match id.
func CheckIDHeader(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(IDHeaderName)
		if subtle.ConstantTimeCompare([]byte(got), []byte(id)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
