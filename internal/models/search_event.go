package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SearchMode identifies which search screen issued a query.
type SearchMode string

const (
	TextSearchMode       SearchMode = "text"
	IngredientSearchMode SearchMode = "ingredients"
	RandomRecipesMode    SearchMode = "random"
)

// Valid reports whether m is one of the known search modes.
func (m SearchMode) Valid() bool {
	switch m {
	case TextSearchMode, IngredientSearchMode, RandomRecipesMode:
		return true
	}
	return false
}

// SearchEvent records one submitted search. Only the outcome is kept; the
// recipes themselves are never stored.
type SearchEvent struct {
	gorm.Model
	SessionID   string         `gorm:"index"`
	Mode        SearchMode     `gorm:"type:text;index"`
	Query       string
	Ingredients pq.StringArray `gorm:"type:text[]"`
	Count       int
	ResultCount int
	Failed      bool `gorm:"default:false"`
	ClientHash  string
}
