package testutil

import (
	"fmt"

	"github.com/windoze95/saltybytes-discover/internal/models"
)

// TestSummaries creates n recipe summaries with ids 1..n.
func TestSummaries(n int) []models.RecipeSummary {
	out := make([]models.RecipeSummary, n)
	for i := range out {
		id := int64(i + 1)
		out[i] = models.RecipeSummary{
			ID:    id,
			Title: fmt.Sprintf("Recipe %d", id),
			Image: fmt.Sprintf("https://img.spoonacular.com/recipes/%d-312x231.jpg", id),
		}
	}
	return out
}

// TestRecipeDetail creates a detail record with a summary that still needs
// sanitizing by the caller under test.
func TestRecipeDetail() *models.RecipeDetail {
	return &models.RecipeDetail{
		ID:    716429,
		Title: "Pasta with Garlic, Scallions, Cauliflower & Breadcrumbs",
		Image: "https://img.spoonacular.com/recipes/716429-556x370.jpg",
		Ingredients: []string{
			"1 tbsp butter",
			"about 2 cups frozen cauliflower florets, thawed, cut into bite-sized pieces",
			"2 tbsp grated cheese",
		},
		Summary:        models.SanitizeHTML(`You can never have too many <b>main course</b> recipes.`),
		ReadyInMinutes: 45,
		Servings:       2,
		SourceURL:      "https://fullbellysisters.blogspot.com/2012/06/pasta-with-garlic-scallions-cauliflower.html",
	}
}
