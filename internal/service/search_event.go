package service

import (
	"encoding/hex"

	"github.com/windoze95/saltybytes-discover/internal/browse"
	"github.com/windoze95/saltybytes-discover/internal/config"
	"github.com/windoze95/saltybytes-discover/internal/logger"
	"github.com/windoze95/saltybytes-discover/internal/models"
	"github.com/windoze95/saltybytes-discover/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// SearchEventService records finished searches.
type SearchEventService struct {
	Cfg  *config.Config
	Repo repository.SearchEventRepo
}

// ModeStats is the number of recorded searches per mode.
type ModeStats map[models.SearchMode]int64

// NewSearchEventService creates a new SearchEventService.
func NewSearchEventService(cfg *config.Config, repo repository.SearchEventRepo) *SearchEventService {
	return &SearchEventService{
		Cfg:  cfg,
		Repo: repo,
	}
}

// Record stores one search outcome. Storage failures are logged and never
// reach the caller.
func (s *SearchEventService) Record(sessionID, clientIP string, o browse.Outcome) {
	event := &models.SearchEvent{
		SessionID:   sessionID,
		Mode:        o.Mode,
		Query:       o.Query,
		Ingredients: o.Ingredients,
		Count:       o.Count,
		ResultCount: o.ResultCount,
		Failed:      o.Err != nil,
		ClientHash:  s.ClientHash(clientIP),
	}
	if err := s.Repo.CreateSearchEvent(event); err != nil {
		logger.Get().Warn("failed to record search event",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}

// ClientHash returns a keyed hash of the client IP so that events from one
// client can be grouped without storing the address.
func (s *SearchEventService) ClientHash(clientIP string) string {
	if clientIP == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(s.Cfg.EnvVars.JwtSecretKey + clientIP))
	return hex.EncodeToString(sum[:])
}

// Stats counts the recorded searches of every mode.
func (s *SearchEventService) Stats() (ModeStats, error) {
	stats := make(ModeStats, 3)
	for _, mode := range []models.SearchMode{
		models.TextSearchMode,
		models.IngredientSearchMode,
		models.RandomRecipesMode,
	} {
		n, err := s.Repo.CountSearchEventsByMode(mode)
		if err != nil {
			return nil, err
		}
		stats[mode] = n
	}
	return stats, nil
}
