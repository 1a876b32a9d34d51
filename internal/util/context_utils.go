package util

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-discover/internal/service"
)

const (
	// SessionIDKey holds the session ID taken from the verified token.
	SessionIDKey = "session_id"
	// SessionKey holds the *service.Session loaded for the request.
	SessionKey = "session"
)

// GetSessionFromContext gets the session from the context.
func GetSessionFromContext(c *gin.Context) (*service.Session, error) {
	val, ok := c.Get(SessionKey)
	if !ok {
		return nil, errors.New("no session information")
	}

	session, ok := val.(*service.Session)
	if !ok {
		return nil, errors.New("session information is of the wrong type")
	}

	return session, nil
}

// GetSessionIDFromContext gets the session ID from the context.
func GetSessionIDFromContext(c *gin.Context) (string, error) {
	val, ok := c.Get(SessionIDKey)
	if !ok {
		return "", errors.New("no session ID information")
	}

	sessionID, ok := val.(string)
	if !ok || sessionID == "" {
		return "", errors.New("session ID information is of the wrong type")
	}

	return sessionID, nil
}
