package service

import (
	"errors"
	"testing"

	"github.com/windoze95/saltybytes-discover/internal/browse"
	"github.com/windoze95/saltybytes-discover/internal/models"
	"github.com/windoze95/saltybytes-discover/internal/testutil"
)

func TestRecord_FailedOutcome(t *testing.T) {
	repo := testutil.NewMockSearchEventRepo()
	svc := NewSearchEventService(newTestConfig(), repo)

	svc.Record("s1", "", browse.Outcome{
		Mode:        models.IngredientSearchMode,
		Ingredients: []string{"apples", "flour"},
		Err:         errors.New("timeout"),
	})

	events := repo.Snapshot()
	if len(events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(events))
	}
	if !events[0].Failed || len(events[0].Ingredients) != 2 || events[0].ClientHash != "" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestRecord_StorageErrorIsSwallowed(t *testing.T) {
	repo := testutil.NewMockSearchEventRepo()
	repo.Err = errors.New("connection refused")
	svc := NewSearchEventService(newTestConfig(), repo)

	svc.Record("s1", "10.0.0.1", browse.Outcome{Mode: models.RandomRecipesMode, Count: 3})

	if len(repo.Snapshot()) != 0 {
		t.Error("event stored despite repo error")
	}
}

func TestClientHash_StableAndKeyed(t *testing.T) {
	svc := NewSearchEventService(newTestConfig(), testutil.NewMockSearchEventRepo())

	a := svc.ClientHash("10.0.0.1")
	if a != svc.ClientHash("10.0.0.1") {
		t.Error("hash is not stable")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64", len(a))
	}
	if a == svc.ClientHash("10.0.0.2") {
		t.Error("different addresses share a hash")
	}

	other := newTestConfig()
	other.EnvVars.JwtSecretKey = "another-secret"
	if a == NewSearchEventService(other, nil).ClientHash("10.0.0.1") {
		t.Error("hash does not depend on the secret")
	}
}

func TestStats(t *testing.T) {
	repo := testutil.NewMockSearchEventRepo()
	svc := NewSearchEventService(newTestConfig(), repo)
	svc.Record("s1", "", browse.Outcome{Mode: models.TextSearchMode, Query: "pasta"})
	svc.Record("s1", "", browse.Outcome{Mode: models.TextSearchMode, Query: "soup"})
	svc.Record("s2", "", browse.Outcome{Mode: models.RandomRecipesMode, Count: 4})

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats[models.TextSearchMode] != 2 || stats[models.RandomRecipesMode] != 1 || stats[models.IngredientSearchMode] != 0 {
		t.Errorf("stats = %v", stats)
	}
}
