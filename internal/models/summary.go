package models

import "fmt"

// RecipeSummary is the minimal recipe record returned by every
// list-producing upstream operation.
type RecipeSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
}

// DetailRoute is the browser route of the recipe's detail view.
func (r RecipeSummary) DetailRoute() string {
	return DetailRoute(r.ID)
}

// DetailRoute returns the browser route of a recipe's detail view.
func DetailRoute(recipeID int64) string {
	return fmt.Sprintf("/recipe-details/%d", recipeID)
}
