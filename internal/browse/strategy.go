package browse

import (
	"context"

	"github.com/windoze95/saltybytes-discover/internal/models"
	"github.com/windoze95/saltybytes-discover/internal/spoonacular"
)

// DefaultFetchLimit is how many recipes a search asks the upstream for.
const DefaultFetchLimit = 10

// Layout is how a screen presents the result set.
type Layout int

const (
	// Paginated shows PageSize items per page with page navigation.
	Paginated Layout = iota
	// Rows shows the whole result set once, split into fixed-size rows.
	Rows
)

// String returns the layout name used in JSON.
func (l Layout) String() string {
	if l == Rows {
		return "rows"
	}
	return "paginated"
}

// MarshalText implements encoding.TextMarshaler.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Copy is the user-facing text a strategy reports.
type Copy struct {
	Failed string
	Empty  string
}

// QueryFilter rejects query text beyond the emptiness check. It returns a
// user-facing reason, or "" to accept.
type QueryFilter func(text string) string

// Strategy is everything that differs between the search screens. The
// controller itself is the same for all of them.
type Strategy struct {
	Mode       models.SearchMode
	Layout     Layout
	PageSize   int
	RowSizes   []int
	FetchLimit int
	Copy       Copy
	Filter     QueryFilter

	normalize func(q Query, emptyMsg string) (normalized, error)
	fetch     func(ctx context.Context, p spoonacular.RecipeProvider, n normalized, limit int) ([]models.RecipeSummary, int, error)
}

// TextSearch pages through the results of a free-text search.
func TextSearch(c Copy) Strategy {
	return Strategy{
		Mode:       models.TextSearchMode,
		Layout:     Paginated,
		PageSize:   DefaultPageSize,
		FetchLimit: DefaultFetchLimit,
		Copy:       c,
		normalize:  normalizeText,
		fetch: func(ctx context.Context, p spoonacular.RecipeProvider, n normalized, limit int) ([]models.RecipeSummary, int, error) {
			res, err := p.SearchRecipes(ctx, n.text, limit)
			if err != nil {
				return nil, 0, err
			}
			return res.Results, res.TotalResults, nil
		},
	}
}

// IngredientSearch shows at most ten recipes using the listed ingredients
// in 4/3/3 rows.
func IngredientSearch(c Copy) Strategy {
	return Strategy{
		Mode:       models.IngredientSearchMode,
		Layout:     Rows,
		PageSize:   DefaultPageSize,
		RowSizes:   DefaultRowSizes,
		FetchLimit: DefaultFetchLimit,
		Copy:       c,
		normalize:  normalizeIngredients,
		fetch: func(ctx context.Context, p spoonacular.RecipeProvider, n normalized, limit int) ([]models.RecipeSummary, int, error) {
			res, err := p.SearchByIngredients(ctx, n.text, limit)
			if err != nil {
				return nil, 0, err
			}
			return res, len(res), nil
		},
	}
}

// RandomRecipes shows 1-10 random recipes in 4/3/3 rows.
func RandomRecipes(c Copy) Strategy {
	return Strategy{
		Mode:       models.RandomRecipesMode,
		Layout:     Rows,
		PageSize:   DefaultPageSize,
		RowSizes:   DefaultRowSizes,
		FetchLimit: MaxRandomCount,
		Copy:       c,
		normalize:  normalizeCount,
		fetch: func(ctx context.Context, p spoonacular.RecipeProvider, n normalized, _ int) ([]models.RecipeSummary, int, error) {
			res, err := p.RandomRecipes(ctx, n.count)
			if err != nil {
				return nil, 0, err
			}
			return res, len(res), nil
		},
	}
}

// StrategyFor returns the built-in strategy of a search mode.
func StrategyFor(mode models.SearchMode, c Copy) (Strategy, bool) {
	switch mode {
	case models.TextSearchMode:
		return TextSearch(c), true
	case models.IngredientSearchMode:
		return IngredientSearch(c), true
	case models.RandomRecipesMode:
		return RandomRecipes(c), true
	}
	return Strategy{}, false
}

// WithFilter returns a copy of s that also runs f on text queries.
func (s Strategy) WithFilter(f QueryFilter) Strategy {
	s.Filter = f
	return s
}

func (s Strategy) validate(q Query) (normalized, error) {
	n, err := s.normalize(q, s.Copy.Empty)
	if err != nil {
		return normalized{}, err
	}
	if s.Filter != nil && n.text != "" {
		if reason := s.Filter(n.text); reason != "" {
			return normalized{}, &ValidationError{Field: "query", Message: reason}
		}
	}
	return n, nil
}

func (s Strategy) pageSize() int {
	if s.PageSize <= 0 {
		return DefaultPageSize
	}
	return s.PageSize
}
