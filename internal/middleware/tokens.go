package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/windoze95/saltybytes-discover/internal/config"
	"github.com/windoze95/saltybytes-discover/internal/service"
	"github.com/windoze95/saltybytes-discover/internal/util"
)

var (
	errInvalidToken     = errors.New("invalid or expired token")
	errInvalidTokenType = errors.New("invalid token type")
	errInvalidSessionID = errors.New("invalid session_id in token")
)

// ParseSessionToken verifies a session token and returns the session ID it
// was issued for.
func ParseSessionToken(secret, tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != service.SessionTokenType {
		return "", errInvalidTokenType
	}

	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return "", errInvalidSessionID
	}
	return sessionID, nil
}

// VerifySessionToken verifies the session token in the Authorization
// header. When the route has a :session_id parameter it must name the same
// session as the token.
func VerifySessionToken(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)

		sessionID, err := ParseSessionToken(cfg.EnvVars.JwtSecretKey, tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		if param := c.Param("session_id"); param != "" && param != sessionID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Token does not belong to this session"})
			c.Abort()
			return
		}

		c.Set(util.SessionIDKey, sessionID)
		c.Next()
	}
}
