package spoonacular

import (
	"context"

	"github.com/windoze95/saltybytes-discover/internal/models"
)

// RecipeProvider is the upstream recipe API as the rest of the application
// sees it.
type RecipeProvider interface {
	SearchRecipes(ctx context.Context, query string, number int) (*SearchResult, error)
	SearchByIngredients(ctx context.Context, ingredients string, number int) ([]models.RecipeSummary, error)
	RandomRecipes(ctx context.Context, number int) ([]models.RecipeSummary, error)
	RecipeInformation(ctx context.Context, recipeID int64) (*models.RecipeDetail, error)
	SimilarRecipes(ctx context.Context, recipeID int64, number int) ([]models.RecipeSummary, error)
}

// SearchResult is the decoded response of a text search.
type SearchResult struct {
	Results      []models.RecipeSummary `json:"results"`
	TotalResults int                    `json:"total_results"`
}

// Credentials authenticate every upstream call.
type Credentials struct {
	APIKey string
}
