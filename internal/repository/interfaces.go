package repository

import "github.com/windoze95/saltybytes-discover/internal/models"

// SearchEventRepo is the interface for search event repository operations.
type SearchEventRepo interface {
	CreateSearchEvent(event *models.SearchEvent) error
	CountSearchEventsByMode(mode models.SearchMode) (int64, error)
}
