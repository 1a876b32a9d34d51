package models

// RecipeDetail is the full record of a single recipe. It is fetched fresh
// for every detail view and never stored.
type RecipeDetail struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Image          string   `json:"image,omitempty"`
	Ingredients    []string `json:"ingredients"`
	Summary        SafeHTML `json:"summary_html"`
	ReadyInMinutes int      `json:"ready_in_minutes,omitempty"`
	Servings       int      `json:"servings,omitempty"`
	SourceURL      string   `json:"source_url,omitempty"`
}
