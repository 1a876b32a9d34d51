package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-discover/internal/browse"
	"github.com/windoze95/saltybytes-discover/internal/service"
)

// parseIDParam parses a positive recipe ID.
func parseIDParam(param string) (int64, error) {
	parsed, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("id must be positive: %d", parsed)
	}
	return parsed, nil
}

// parseSizes parses a comma-separated list of non-negative row sizes.
func parseSizes(param string) ([]int, error) {
	parts := strings.Split(param, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid row size %q", p)
		}
		if n < 0 {
			return nil, fmt.Errorf("row size must not be negative: %d", n)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

// errorStatus maps a service error to its HTTP status and user-facing
// message.
func errorStatus(err error) (int, string) {
	var vErr *browse.ValidationError
	var tErr *browse.TransportError
	var nfErr service.SessionNotFoundError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, vErr.Message
	case errors.As(err, &tErr):
		return http.StatusBadGateway, tErr.Message
	case errors.As(err, &nfErr):
		return http.StatusNotFound, "Session not found or expired"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondError writes err as a JSON error body. Extra fields, such as the
// view after a failed search, are merged into the body.
func respondError(c *gin.Context, err error, extra gin.H) {
	status, message := errorStatus(err)
	body := gin.H{"error": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}
