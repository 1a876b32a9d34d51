package repository

import (
	"fmt"

	"github.com/windoze95/saltybytes-discover/internal/models"
	"gorm.io/gorm"
)

// SearchEventRepository persists search events.
type SearchEventRepository struct {
	DB *gorm.DB
}

// NewSearchEventRepository creates a new SearchEventRepository.
func NewSearchEventRepository(db *gorm.DB) *SearchEventRepository {
	return &SearchEventRepository{DB: db}
}

// CreateSearchEvent inserts one search event.
func (r *SearchEventRepository) CreateSearchEvent(event *models.SearchEvent) error {
	if err := r.DB.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create search event: %w", err)
	}
	return nil
}

// CountSearchEventsByMode counts the recorded searches of one mode.
func (r *SearchEventRepository) CountSearchEventsByMode(mode models.SearchMode) (int64, error) {
	var count int64
	err := r.DB.Model(&models.SearchEvent{}).
		Where("mode = ?", mode).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count search events: %w", err)
	}
	return count, nil
}

// NoopSearchEventRepository discards events. It is used when no database
// is configured.
type NoopSearchEventRepository struct{}

// CreateSearchEvent discards the event.
func (NoopSearchEventRepository) CreateSearchEvent(*models.SearchEvent) error { return nil }

// CountSearchEventsByMode always reports zero.
func (NoopSearchEventRepository) CountSearchEventsByMode(models.SearchMode) (int64, error) {
	return 0, nil
}
