package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-discover/internal/browse"
	"github.com/windoze95/saltybytes-discover/internal/logger"
	"github.com/windoze95/saltybytes-discover/internal/models"
	"github.com/windoze95/saltybytes-discover/internal/service"
	"github.com/windoze95/saltybytes-discover/internal/util"
	"go.uber.org/zap"
)

// Reset reasons accepted by ResetSession.
const (
	ResetNewSearch = "new_search"
	ResetBack      = "back"
)

// SessionHandler handles the search screen of a browsing session.
type SessionHandler struct {
	Service *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{Service: sessionService}
}

type createSessionRequest struct {
	Mode models.SearchMode `json:"mode" binding:"required"`
}

type goToPageRequest struct {
	Page *int `json:"page" binding:"required"`
}

// CreateSession handles POST /v1/sessions.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must contain a mode"})
		return
	}

	session, token, err := h.Service.CreateSession(req.Mode, c.ClientIP())
	if err != nil {
		logger.FromContext(c).Warn("failed to create session", zap.String("mode", string(req.Mode)), zap.Error(err))
		respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": session.ID,
		"token":      token,
		"view":       session.Controller.View(),
	})
}

// GetView handles GET /v1/sessions/:session_id.
func (h *SessionHandler) GetView(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": session.Controller.View()})
}

// SubmitQuery handles POST /v1/sessions/:session_id/search.
func (h *SessionHandler) SubmitQuery(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	var q browse.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search body"})
		return
	}

	if _, err := session.Controller.SubmitQuery(c.Request.Context(), q); err != nil {
		logger.FromContext(c).Warn("search failed",
			zap.String("session_id", session.ID),
			zap.String("mode", string(session.Mode)),
			zap.Error(err),
		)
		respondError(c, err, gin.H{"view": session.Controller.View()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"view": session.Controller.View()})
}

// GoToPage handles PUT /v1/sessions/:session_id/page.
func (h *SessionHandler) GoToPage(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	var req goToPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must contain a page"})
		return
	}

	session.Controller.GoToPage(*req.Page)
	c.JSON(http.StatusOK, gin.H{"view": session.Controller.View()})
}

// ResetSession handles POST /v1/sessions/:session_id/reset?reason=.
// Both reasons return the screen to its query form.
func (h *SessionHandler) ResetSession(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	reason := c.DefaultQuery("reason", ResetNewSearch)
	if reason != ResetNewSearch && reason != ResetBack {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason must be new_search or back"})
		return
	}

	session.Controller.ResetToInput()
	logger.FromContext(c).Debug("session reset",
		zap.String("session_id", session.ID),
		zap.String("reason", reason),
	)
	c.JSON(http.StatusOK, gin.H{"view": session.Controller.View()})
}

// GetRows handles GET /v1/sessions/:session_id/rows?sizes=4,3,3. Without
// sizes the strategy's row sizes are used.
func (h *SessionHandler) GetRows(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	sizes := session.Controller.Strategy().RowSizes
	if sizes == nil {
		sizes = browse.DefaultRowSizes
	}
	if raw := c.Query("sizes"); raw != "" {
		parsed, err := parseSizes(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sizes = parsed
	}

	c.JSON(http.StatusOK, gin.H{
		"sizes": sizes,
		"rows":  session.Controller.RowSplit(sizes),
	})
}

// DeleteSession handles DELETE /v1/sessions/:session_id.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	h.Service.DeleteSession(session.ID)
	c.Status(http.StatusNoContent)
}

// sessionFromContext returns the session attached by the session
// middleware, answering 401 when it is missing.
func sessionFromContext(c *gin.Context) (*service.Session, bool) {
	session, err := util.GetSessionFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return session, true
}
