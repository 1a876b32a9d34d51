package browse

import (
	"context"
	"sync"

	"github.com/windoze95/saltybytes-discover/internal/models"
	"github.com/windoze95/saltybytes-discover/internal/spoonacular"
)

// ViewMode is whether a screen shows its query form or its results.
type ViewMode int

const (
	InputMode ViewMode = iota
	ResultsMode
)

// String returns the mode name used in JSON.
func (m ViewMode) String() string {
	if m == ResultsMode {
		return "results"
	}
	return "input"
}

// MarshalText implements encoding.TextMarshaler.
func (m ViewMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// View is an immutable snapshot of a controller, ready to render.
type View struct {
	Mode         models.SearchMode        `json:"mode"`
	ViewMode     ViewMode                 `json:"view_mode"`
	Layout       Layout                   `json:"layout"`
	Query        string                   `json:"query"`
	Error        string                   `json:"error,omitempty"`
	Page         PageState                `json:"page"`
	ResultCount  int                      `json:"result_count"`
	TotalResults int                      `json:"total_results"`
	Items        []models.RecipeSummary   `json:"items"`
	Rows         [][]models.RecipeSummary `json:"rows,omitempty"`
}

// Outcome describes a finished submission, for callers that record them.
type Outcome struct {
	Mode        models.SearchMode
	Query       string
	Ingredients []string
	Count       int
	ResultCount int
	Err         error
}

// Controller owns the view state of one search screen: the result set, its
// pagination, the view mode and the error message. It is safe for
// concurrent use. The lock is not held while the upstream request is in
// flight, so overlapping submissions all complete and the last one to
// finish wins.
type Controller struct {
	strategy Strategy
	provider spoonacular.RecipeProvider

	mu           sync.Mutex
	viewMode     ViewMode
	query        string
	results      []models.RecipeSummary
	totalResults int
	page         int
	errMsg       string

	onChange  func(View)
	onOutcome func(Outcome)
}

// NewController creates a controller in InputMode.
func NewController(strategy Strategy, provider spoonacular.RecipeProvider) *Controller {
	return &Controller{
		strategy: strategy,
		provider: provider,
		viewMode: InputMode,
		page:     1,
	}
}

// OnChange registers fn to be called with a fresh snapshot after every
// state transition. fn runs outside the controller's lock.
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// OnOutcome registers fn to be called after every submission that reached
// the upstream.
func (c *Controller) OnOutcome(fn func(Outcome)) {
	c.mu.Lock()
	c.onOutcome = fn
	c.mu.Unlock()
}

// Strategy returns the strategy the controller was built with.
func (c *Controller) Strategy() Strategy {
	return c.strategy
}

// SubmitQuery validates q, fetches the matching recipes and moves to
// ResultsMode. A *ValidationError leaves the state untouched and issues no
// request. A *TransportError clears the results, sets the generic error
// message and returns to InputMode.
func (c *Controller) SubmitQuery(ctx context.Context, q Query) ([]models.RecipeSummary, error) {
	n, err := c.strategy.validate(q)
	if err != nil {
		return nil, err
	}

	items, total, fetchErr := c.strategy.fetch(ctx, c.provider, n, c.strategy.FetchLimit)
	if fetchErr == nil && c.strategy.FetchLimit > 0 && len(items) > c.strategy.FetchLimit {
		items = items[:c.strategy.FetchLimit]
	}

	c.mu.Lock()
	c.query = n.display()
	if fetchErr != nil {
		c.results = nil
		c.totalResults = 0
		c.page = 1
		c.errMsg = c.strategy.Copy.Failed
		c.viewMode = InputMode
	} else {
		c.results = items
		c.totalResults = total
		c.page = 1
		c.errMsg = ""
		c.viewMode = ResultsMode
	}
	view, onChange, onOutcome := c.snapshotLocked(), c.onChange, c.onOutcome
	c.mu.Unlock()

	out := Outcome{
		Mode:        c.strategy.Mode,
		Query:       n.text,
		Ingredients: n.ingredients,
		Count:       n.count,
		ResultCount: len(items),
		Err:         fetchErr,
	}
	if onOutcome != nil {
		onOutcome(out)
	}
	if onChange != nil {
		onChange(view)
	}

	if fetchErr != nil {
		return nil, &TransportError{
			Op:      string(c.strategy.Mode) + " search",
			Message: c.strategy.Copy.Failed,
			Err:     fetchErr,
		}
	}
	return cloneSummaries(items), nil
}

// ResetToInput clears the results, error and query and returns to
// InputMode on page 1. Calling it repeatedly has no further effect.
func (c *Controller) ResetToInput() {
	c.mu.Lock()
	c.viewMode = InputMode
	c.query = ""
	c.results = nil
	c.totalResults = 0
	c.page = 1
	c.errMsg = ""
	view, onChange := c.snapshotLocked(), c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(view)
	}
}

// GoToPage moves to page n, clamped to [1, TotalPages]. It is a no-op when
// there are no results and never refetches.
func (c *Controller) GoToPage(n int) PageState {
	c.mu.Lock()
	if len(c.results) == 0 {
		ps := c.pageStateLocked()
		c.mu.Unlock()
		return ps
	}
	c.page = ClampPage(n, TotalPages(len(c.results), c.strategy.pageSize()))
	ps := c.pageStateLocked()
	view, onChange := c.snapshotLocked(), c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(view)
	}
	return ps
}

// CurrentPageItems returns the recipes on the current page.
func (c *Controller) CurrentPageItems() []models.RecipeSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return PageItems(c.results, c.page, c.strategy.pageSize())
}

// RowSplit partitions the whole result set into rows of the given sizes.
// It does not change any state.
func (c *Controller) RowSplit(sizes []int) [][]models.RecipeSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return RowSplit(c.results, sizes)
}

// PageState returns the current pagination.
func (c *Controller) PageState() PageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageStateLocked()
}

// ViewMode returns the current view mode.
func (c *Controller) ViewMode() ViewMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMode
}

// Results returns a copy of the whole result set.
func (c *Controller) Results() []models.RecipeSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneSummaries(c.results)
}

// ErrorMessage returns the current user-facing error message, if any.
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// View returns a snapshot of the controller.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) pageStateLocked() PageState {
	size := c.strategy.pageSize()
	return PageState{
		CurrentPage: c.page,
		PageSize:    size,
		TotalPages:  TotalPages(len(c.results), size),
	}
}

func (c *Controller) snapshotLocked() View {
	v := View{
		Mode:         c.strategy.Mode,
		ViewMode:     c.viewMode,
		Layout:       c.strategy.Layout,
		Query:        c.query,
		Error:        c.errMsg,
		Page:         c.pageStateLocked(),
		ResultCount:  len(c.results),
		TotalResults: c.totalResults,
		Items:        PageItems(c.results, c.page, c.strategy.pageSize()),
	}
	if c.strategy.Layout == Rows {
		v.Rows = RowSplit(c.results, c.strategy.RowSizes)
	}
	return v
}

func cloneSummaries(in []models.RecipeSummary) []models.RecipeSummary {
	out := make([]models.RecipeSummary, len(in))
	copy(out, in)
	return out
}
