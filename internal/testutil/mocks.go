package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/windoze95/saltybytes-discover/internal/models"
	"github.com/windoze95/saltybytes-discover/internal/spoonacular"
)

// --- MockRecipeProvider ---

// MockRecipeProvider is a mock implementation of spoonacular.RecipeProvider.
// Each operation counts its calls so tests can assert on request counts.
type MockRecipeProvider struct {
	SearchRecipesFunc       func(ctx context.Context, query string, number int) (*spoonacular.SearchResult, error)
	SearchByIngredientsFunc func(ctx context.Context, ingredients string, number int) ([]models.RecipeSummary, error)
	RandomRecipesFunc       func(ctx context.Context, number int) ([]models.RecipeSummary, error)
	RecipeInformationFunc   func(ctx context.Context, recipeID int64) (*models.RecipeDetail, error)
	SimilarRecipesFunc      func(ctx context.Context, recipeID int64, number int) ([]models.RecipeSummary, error)

	SearchRecipesCalls       atomic.Int32
	SearchByIngredientsCalls atomic.Int32
	RandomRecipesCalls       atomic.Int32
	RecipeInformationCalls   atomic.Int32
	SimilarRecipesCalls      atomic.Int32
}

func (m *MockRecipeProvider) SearchRecipes(ctx context.Context, query string, number int) (*spoonacular.SearchResult, error) {
	m.SearchRecipesCalls.Add(1)
	if m.SearchRecipesFunc != nil {
		return m.SearchRecipesFunc(ctx, query, number)
	}
	return nil, fmt.Errorf("SearchRecipes not configured")
}

func (m *MockRecipeProvider) SearchByIngredients(ctx context.Context, ingredients string, number int) ([]models.RecipeSummary, error) {
	m.SearchByIngredientsCalls.Add(1)
	if m.SearchByIngredientsFunc != nil {
		return m.SearchByIngredientsFunc(ctx, ingredients, number)
	}
	return nil, fmt.Errorf("SearchByIngredients not configured")
}

func (m *MockRecipeProvider) RandomRecipes(ctx context.Context, number int) ([]models.RecipeSummary, error) {
	m.RandomRecipesCalls.Add(1)
	if m.RandomRecipesFunc != nil {
		return m.RandomRecipesFunc(ctx, number)
	}
	return nil, fmt.Errorf("RandomRecipes not configured")
}

func (m *MockRecipeProvider) RecipeInformation(ctx context.Context, recipeID int64) (*models.RecipeDetail, error) {
	m.RecipeInformationCalls.Add(1)
	if m.RecipeInformationFunc != nil {
		return m.RecipeInformationFunc(ctx, recipeID)
	}
	return nil, fmt.Errorf("RecipeInformation not configured")
}

func (m *MockRecipeProvider) SimilarRecipes(ctx context.Context, recipeID int64, number int) ([]models.RecipeSummary, error) {
	m.SimilarRecipesCalls.Add(1)
	if m.SimilarRecipesFunc != nil {
		return m.SimilarRecipesFunc(ctx, recipeID, number)
	}
	return nil, fmt.Errorf("SimilarRecipes not configured")
}

// --- MockSearchEventRepo ---

// MockSearchEventRepo is an in-memory implementation of
// repository.SearchEventRepo.
type MockSearchEventRepo struct {
	mu     sync.Mutex
	Events []models.SearchEvent
	Err    error
}

// NewMockSearchEventRepo creates an empty MockSearchEventRepo.
func NewMockSearchEventRepo() *MockSearchEventRepo {
	return &MockSearchEventRepo{}
}

func (m *MockSearchEventRepo) CreateSearchEvent(event *models.SearchEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	event.ID = uint(len(m.Events) + 1)
	m.Events = append(m.Events, *event)
	return nil
}

func (m *MockSearchEventRepo) CountSearchEventsByMode(mode models.SearchMode) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, e := range m.Events {
		if e.Mode == mode {
			n++
		}
	}
	return n, nil
}

// Snapshot returns a copy of the recorded events.
func (m *MockSearchEventRepo) Snapshot() []models.SearchEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SearchEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
