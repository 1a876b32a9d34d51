package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/windoze95/saltybytes-discover/internal/browse"
	"github.com/windoze95/saltybytes-discover/internal/config"
	"github.com/windoze95/saltybytes-discover/internal/models"
	"github.com/windoze95/saltybytes-discover/internal/spoonacular"
	"github.com/windoze95/saltybytes-discover/internal/testutil"
)

const testSecret = "test-secret-key-for-unit-tests"

func newTestConfig() *config.Config {
	return &config.Config{
		EnvVars: config.EnvVars{
			JwtSecretKey: testSecret,
			SessionTTL:   30 * time.Minute,
		},
		Messages: config.DefaultMessages(),
	}
}

func newTestSessionService(provider *testutil.MockRecipeProvider) (*SessionService, *testutil.MockSearchEventRepo) {
	cfg := newTestConfig()
	repo := testutil.NewMockSearchEventRepo()
	return NewSessionService(cfg, provider, NewSearchEventService(cfg, repo)), repo
}

func TestCreateSession_IssuesSessionToken(t *testing.T) {
	svc, _ := newTestSessionService(&testutil.MockRecipeProvider{})

	session, tokenStr, err := svc.CreateSession(models.IngredientSearchMode, "10.0.0.1")
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	if session.ID == "" || session.Mode != models.IngredientSearchMode {
		t.Errorf("session = %+v", session)
	}
	if session.Controller.ViewMode() != browse.InputMode {
		t.Error("new session should start in input mode")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token did not verify: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["session_id"] != session.ID {
		t.Errorf("session_id claim = %v, want %s", claims["session_id"], session.ID)
	}
	if claims["type"] != SessionTokenType || claims["mode"] != "ingredients" {
		t.Errorf("claims = %v", claims)
	}
}

func TestCreateSession_UnknownMode(t *testing.T) {
	svc, _ := newTestSessionService(&testutil.MockRecipeProvider{})

	_, _, err := svc.CreateSession(models.SearchMode("nearby"), "")
	var vErr *browse.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "mode" {
		t.Errorf("error = %v, want mode ValidationError", err)
	}
	if svc.Count() != 0 {
		t.Errorf("Count = %d, want 0", svc.Count())
	}
}

func TestGetSession_NotFound(t *testing.T) {
	svc, _ := newTestSessionService(&testutil.MockRecipeProvider{})

	_, err := svc.GetSession("missing")
	var nfErr SessionNotFoundError
	if !errors.As(err, &nfErr) || nfErr.SessionID != "missing" {
		t.Errorf("error = %v, want SessionNotFoundError", err)
	}
}

func TestDeleteSession(t *testing.T) {
	svc, _ := newTestSessionService(&testutil.MockRecipeProvider{})
	session, _, _ := svc.CreateSession(models.TextSearchMode, "")

	svc.DeleteSession(session.ID)
	svc.DeleteSession(session.ID)

	if _, err := svc.GetSession(session.ID); err == nil {
		t.Error("deleted session still found")
	}
}

func TestSweep_RemovesIdleSessions(t *testing.T) {
	svc, _ := newTestSessionService(&testutil.MockRecipeProvider{})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	idle, _, _ := svc.CreateSession(models.TextSearchMode, "")
	now = now.Add(20 * time.Minute)
	active, _, _ := svc.CreateSession(models.RandomRecipesMode, "")
	now = now.Add(15 * time.Minute)

	if removed := svc.Sweep(); removed != 1 {
		t.Fatalf("Sweep removed %d, want 1", removed)
	}
	if _, err := svc.GetSession(idle.ID); err == nil {
		t.Error("idle session survived the sweep")
	}
	if _, err := svc.GetSession(active.ID); err != nil {
		t.Errorf("active session swept: %v", err)
	}
}

func TestGetSession_TouchDefersExpiry(t *testing.T) {
	svc, _ := newTestSessionService(&testutil.MockRecipeProvider{})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	session, _, _ := svc.CreateSession(models.TextSearchMode, "")
	now = now.Add(25 * time.Minute)
	svc.GetSession(session.ID)
	now = now.Add(25 * time.Minute)

	if removed := svc.Sweep(); removed != 0 {
		t.Errorf("Sweep removed %d recently used sessions", removed)
	}
}

func TestKeepAlive_DefersExpiry(t *testing.T) {
	svc, _ := newTestSessionService(&testutil.MockRecipeProvider{})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	session, _, _ := svc.CreateSession(models.RandomRecipesMode, "")
	now = now.Add(25 * time.Minute)
	if !svc.KeepAlive(session.ID) {
		t.Fatal("KeepAlive reported a live session as gone")
	}
	now = now.Add(25 * time.Minute)

	if removed := svc.Sweep(); removed != 0 {
		t.Errorf("Sweep removed %d kept-alive sessions", removed)
	}
	if svc.KeepAlive("missing") {
		t.Error("KeepAlive reported an unknown session as live")
	}
}

func TestSession_RecordsOutcomes(t *testing.T) {
	provider := &testutil.MockRecipeProvider{
		SearchRecipesFunc: func(ctx context.Context, query string, number int) (*spoonacular.SearchResult, error) {
			return &spoonacular.SearchResult{Results: testutil.TestSummaries(5), TotalResults: 40}, nil
		},
	}
	svc, repo := newTestSessionService(provider)
	session, _, _ := svc.CreateSession(models.TextSearchMode, "10.0.0.1")

	if _, err := session.Controller.SubmitQuery(context.Background(), browse.TextQuery("pasta")); err != nil {
		t.Fatalf("SubmitQuery error: %v", err)
	}

	events := repo.Snapshot()
	if len(events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(events))
	}
	e := events[0]
	if e.SessionID != session.ID || e.Mode != models.TextSearchMode || e.Query != "pasta" || e.ResultCount != 5 || e.Failed {
		t.Errorf("event = %+v", e)
	}
	if e.ClientHash == "" || e.ClientHash == "10.0.0.1" {
		t.Errorf("ClientHash = %q, want a hash of the address", e.ClientHash)
	}
}

func TestSession_ViewChangeHook(t *testing.T) {
	svc, _ := newTestSessionService(&testutil.MockRecipeProvider{})

	var mu sync.Mutex
	var got []string
	svc.OnViewChange(func(sessionID string, v browse.View) {
		mu.Lock()
		got = append(got, sessionID)
		mu.Unlock()
	})

	session, _, _ := svc.CreateSession(models.TextSearchMode, "")
	session.Controller.ResetToInput()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != session.ID {
		t.Errorf("hook calls = %v, want one for %s", got, session.ID)
	}
}

func TestSession_ProfanityFilter(t *testing.T) {
	svc, _ := newTestSessionService(&testutil.MockRecipeProvider{})
	svc.Cfg.EnvVars.BlockProfaneQueries = true
	session, _, _ := svc.CreateSession(models.TextSearchMode, "")

	_, err := session.Controller.SubmitQuery(context.Background(), browse.TextQuery("shit soup"))
	var vErr *browse.ValidationError
	if !errors.As(err, &vErr) || vErr.Message != "Search contains inappropriate language" {
		t.Errorf("error = %v, want profanity ValidationError", err)
	}
}

func TestMountSimilar_ReusesWidgetUntilUnmounted(t *testing.T) {
	provider := &testutil.MockRecipeProvider{
		SimilarRecipesFunc: func(ctx context.Context, recipeID int64, number int) ([]models.RecipeSummary, error) {
			return testutil.TestSummaries(2), nil
		},
	}
	svc, _ := newTestSessionService(provider)
	session, _, _ := svc.CreateSession(models.TextSearchMode, "")

	svc.MountSimilar(session, 7).Open(context.Background())
	svc.MountSimilar(session, 7).Open(context.Background())
	if n := provider.SimilarRecipesCalls.Load(); n != 1 {
		t.Errorf("upstream called %d times while mounted, want 1", n)
	}

	svc.UnmountSimilar(session, 7)
	if _, ok := svc.MountedSimilar(session, 7); ok {
		t.Error("widget still mounted after unmount")
	}
	svc.MountSimilar(session, 7).Open(context.Background())
	if n := provider.SimilarRecipesCalls.Load(); n != 2 {
		t.Errorf("upstream called %d times after remount, want 2", n)
	}
}

func TestOnEnd_CalledForDeleteAndSweep(t *testing.T) {
	svc, _ := newTestSessionService(&testutil.MockRecipeProvider{})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	var ended []string
	svc.OnEnd(func(sessionID string) { ended = append(ended, sessionID) })

	deleted, _, _ := svc.CreateSession(models.TextSearchMode, "")
	expired, _, _ := svc.CreateSession(models.TextSearchMode, "")
	svc.DeleteSession(deleted.ID)
	svc.DeleteSession(deleted.ID)
	now = now.Add(time.Hour)
	svc.Sweep()

	if len(ended) != 2 || ended[0] != deleted.ID || ended[1] != expired.ID {
		t.Errorf("ended = %v, want [%s %s]", ended, deleted.ID, expired.ID)
	}
}
