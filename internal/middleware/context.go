package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-discover/internal/service"
	"github.com/windoze95/saltybytes-discover/internal/util"
)

// AttachSessionToContext loads the session named by the verified token and
// stores it in the context. Expired sessions answer 404.
func AttachSessionToContext(sessionService *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := util.GetSessionIDFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No session in token"})
			c.Abort()
			return
		}

		session, err := sessionService.GetSession(sessionID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or expired"})
			c.Abort()
			return
		}
		c.Set(util.SessionKey, session)
		c.Next()
	}
}
