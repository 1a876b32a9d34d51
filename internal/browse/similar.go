package browse

import (
	"context"
	"errors"
	"sync"

	"github.com/windoze95/saltybytes-discover/internal/models"
	"github.com/windoze95/saltybytes-discover/internal/spoonacular"
)

// DefaultSimilarLimit is how many similar recipes the modal lists.
const DefaultSimilarLimit = 8

// ErrNotSimilar is returned by Select for a recipe the modal did not list.
var ErrNotSimilar = errors.New("recipe is not in the similar recipes list")

// SimilarState is the lifecycle of a widget's single fetch.
type SimilarState int

const (
	NotStarted SimilarState = iota
	Loading
	Loaded
	Errored
)

// String returns the state name used in JSON.
func (s SimilarState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	}
	return "not_started"
}

// MarshalText implements encoding.TextMarshaler.
func (s SimilarState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SimilarView is a snapshot of a SimilarWidget.
type SimilarView struct {
	RecipeID int64                  `json:"recipe_id"`
	Open     bool                   `json:"open"`
	State    SimilarState           `json:"state"`
	Items    []models.RecipeSummary `json:"items"`
	Error    string                 `json:"error,omitempty"`
	Notice   string                 `json:"notice,omitempty"`
}

// SimilarWidget is the "similar recipes" modal of one recipe. It fetches at
// most once in its lifetime: reopening shows the memoized outcome, whether
// that is a list, an empty list or an error. Its errors never reach the
// screen's Controller.
type SimilarWidget struct {
	recipeID int64
	limit    int
	provider spoonacular.RecipeProvider
	msgs     Copy

	mu    sync.Mutex
	open  bool
	state SimilarState
	items []models.RecipeSummary
	err   error
}

// NewSimilarWidget creates a closed widget that has not fetched yet. A
// non-positive limit uses DefaultSimilarLimit.
func NewSimilarWidget(provider spoonacular.RecipeProvider, recipeID int64, limit int, c Copy) *SimilarWidget {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	return &SimilarWidget{
		recipeID: recipeID,
		limit:    limit,
		provider: provider,
		msgs:     c,
	}
}

// Open shows the modal and, on the first open only, fetches the list. A
// caller that opens while another caller's fetch is running gets the
// Loading view back without starting a second fetch.
func (w *SimilarWidget) Open(ctx context.Context) SimilarView {
	w.mu.Lock()
	w.open = true
	if w.state != NotStarted {
		v := w.viewLocked()
		w.mu.Unlock()
		return v
	}
	w.state = Loading
	w.mu.Unlock()

	items, err := w.provider.SimilarRecipes(ctx, w.recipeID, w.limit)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = Errored
		w.err = err
	} else {
		if len(items) > w.limit {
			items = items[:w.limit]
		}
		w.state = Loaded
		w.items = items
	}
	return w.viewLocked()
}

// Close hides the modal. The fetched list is kept.
func (w *SimilarWidget) Close() SimilarView {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = false
	return w.viewLocked()
}

// Select closes the modal and returns the detail route of the chosen
// recipe, which must be one the modal listed.
func (w *SimilarWidget) Select(recipeID int64) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, item := range w.items {
		if item.ID == recipeID {
			w.open = false
			return item.DetailRoute(), nil
		}
	}
	return "", ErrNotSimilar
}

// Err returns the fetch error, if the fetch failed.
func (w *SimilarWidget) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// View returns a snapshot of the widget.
func (w *SimilarWidget) View() SimilarView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

func (w *SimilarWidget) viewLocked() SimilarView {
	v := SimilarView{
		RecipeID: w.recipeID,
		Open:     w.open,
		State:    w.state,
		Items:    cloneSummaries(w.items),
	}
	switch {
	case w.state == Errored:
		v.Error = w.msgs.Failed
	case w.state == Loaded && len(w.items) == 0:
		v.Notice = w.msgs.Empty
	}
	return v
}
