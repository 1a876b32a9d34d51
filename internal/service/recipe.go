package service

import (
	"context"

	"github.com/windoze95/saltybytes-discover/internal/browse"
	"github.com/windoze95/saltybytes-discover/internal/config"
	"github.com/windoze95/saltybytes-discover/internal/logger"
	"github.com/windoze95/saltybytes-discover/internal/models"
	"github.com/windoze95/saltybytes-discover/internal/spoonacular"
	"go.uber.org/zap"
)

// RecipeService serves single recipes straight from the upstream.
type RecipeService struct {
	Cfg      *config.Config
	Provider spoonacular.RecipeProvider
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(cfg *config.Config, provider spoonacular.RecipeProvider) *RecipeService {
	return &RecipeService{
		Cfg:      cfg,
		Provider: provider,
	}
}

// GetRecipeDetail fetches the detail view of one recipe.
func (s *RecipeService) GetRecipeDetail(ctx context.Context, recipeID int64) (*models.RecipeDetail, error) {
	if recipeID <= 0 {
		return nil, &browse.ValidationError{Field: "recipe_id", Message: "must be a positive integer"}
	}
	detail, err := s.Provider.RecipeInformation(ctx, recipeID)
	if err != nil {
		logger.Get().Warn("recipe detail fetch failed",
			zap.Int64("recipe_id", recipeID),
			zap.Error(err),
		)
		return nil, &browse.TransportError{
			Op:      "recipe detail",
			Message: s.Cfg.Msg().Detail.Failed,
			Err:     err,
		}
	}
	return detail, nil
}
