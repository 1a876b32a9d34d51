package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-discover/internal/logger"
	"github.com/windoze95/saltybytes-discover/internal/service"
	"go.uber.org/zap"
)

// SearchEventHandler serves aggregate search statistics.
type SearchEventHandler struct {
	Service *service.SearchEventService
}

// NewSearchEventHandler creates a new SearchEventHandler.
func NewSearchEventHandler(searchEventService *service.SearchEventService) *SearchEventHandler {
	return &SearchEventHandler{Service: searchEventService}
}

// GetStats handles GET /v1/search-events/stats.
func (h *SearchEventHandler) GetStats(c *gin.Context) {
	stats, err := h.Service.Stats()
	if err != nil {
		logger.FromContext(c).Error("failed to count search events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load search statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": stats})
}
