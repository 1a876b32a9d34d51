package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-discover/internal/logger"
	"github.com/windoze95/saltybytes-discover/internal/service"
	"go.uber.org/zap"
)

// RecipeHandler is the handler for recipe detail requests.
type RecipeHandler struct {
	Service *service.RecipeService
}

// NewRecipeHandler is the constructor function for initializing a new RecipeHandler.
func NewRecipeHandler(recipeService *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{Service: recipeService}
}

// GetRecipeDetail handles GET /v1/recipes/:recipe_id.
func (h *RecipeHandler) GetRecipeDetail(c *gin.Context) {
	recipeIDStr := c.Param("recipe_id")
	recipeID, err := parseIDParam(recipeIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	detail, err := h.Service.GetRecipeDetail(c.Request.Context(), recipeID)
	if err != nil {
		logger.FromContext(c).Error("failed to get recipe detail", zap.String("recipe_id", recipeIDStr), zap.Error(err))
		respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": detail})
}
