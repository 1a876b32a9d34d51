package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-discover/internal/browse"
	"github.com/windoze95/saltybytes-discover/internal/logger"
	"github.com/windoze95/saltybytes-discover/internal/service"
	"go.uber.org/zap"
)

// SimilarHandler handles the similar-recipes modals of a session.
type SimilarHandler struct {
	Service *service.SessionService
}

// NewSimilarHandler creates a new SimilarHandler.
func NewSimilarHandler(sessionService *service.SessionService) *SimilarHandler {
	return &SimilarHandler{Service: sessionService}
}

// OpenSimilar handles POST /v1/sessions/:session_id/similar/:recipe_id/open.
// The first open of a mounted widget fetches; later opens return the
// memoized outcome. A failed fetch is reported in the view, not as an HTTP
// error, so it never disturbs the screen.
func (h *SimilarHandler) OpenSimilar(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	recipeID, err := parseIDParam(c.Param("recipe_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	widget := h.Service.MountSimilar(session, recipeID)
	view := widget.Open(c.Request.Context())
	if view.State == browse.Errored {
		logger.FromContext(c).Warn("similar recipes fetch failed",
			zap.String("session_id", session.ID),
			zap.Int64("recipe_id", recipeID),
			zap.Error(widget.Err()),
		)
	}
	c.JSON(http.StatusOK, gin.H{"similar": view})
}

// CloseSimilar handles POST /v1/sessions/:session_id/similar/:recipe_id/close.
func (h *SimilarHandler) CloseSimilar(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	recipeID, err := parseIDParam(c.Param("recipe_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	widget, mounted := h.Service.MountedSimilar(session, recipeID)
	if !mounted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Similar recipes are not open for this recipe"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"similar": widget.Close()})
}

// SelectSimilar handles
// POST /v1/sessions/:session_id/similar/:recipe_id/select/:selected_id.
func (h *SimilarHandler) SelectSimilar(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	recipeID, err := parseIDParam(c.Param("recipe_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}
	selectedID, err := parseIDParam(c.Param("selected_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid selected recipe ID"})
		return
	}

	widget, mounted := h.Service.MountedSimilar(session, recipeID)
	if !mounted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Similar recipes are not open for this recipe"})
		return
	}

	route, err := widget.Select(selectedID)
	if err != nil {
		if errors.Is(err, browse.ErrNotSimilar) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipe_id": selectedID,
		"route":     route,
		"similar":   widget.View(),
	})
}

// UnmountSimilar handles DELETE /v1/sessions/:session_id/similar/:recipe_id.
// The next open fetches again.
func (h *SimilarHandler) UnmountSimilar(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	recipeID, err := parseIDParam(c.Param("recipe_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}
	h.Service.UnmountSimilar(session, recipeID)
	c.Status(http.StatusNoContent)
}
