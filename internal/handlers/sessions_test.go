package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-discover/internal/config"
	"github.com/windoze95/saltybytes-discover/internal/models"
	"github.com/windoze95/saltybytes-discover/internal/service"
	"github.com/windoze95/saltybytes-discover/internal/spoonacular"
	"github.com/windoze95/saltybytes-discover/internal/testutil"
	"github.com/windoze95/saltybytes-discover/internal/util"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestConfig() *config.Config {
	return &config.Config{
		EnvVars: config.EnvVars{
			JwtSecretKey: "test-secret",
			SessionTTL:   time.Minute,
		},
		Messages: config.DefaultMessages(),
	}
}

// setSession is a test middleware that injects a session into the gin
// context.
func setSession(session *service.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if session != nil {
			c.Set(util.SessionKey, session)
		}
		c.Next()
	}
}

// viewBody is the subset of a view response the tests inspect.
type viewBody struct {
	Error string `json:"error"`
	View  struct {
		Mode        string                 `json:"mode"`
		ViewMode    string                 `json:"view_mode"`
		Layout      string                 `json:"layout"`
		Query       string                 `json:"query"`
		Error       string                 `json:"error"`
		ResultCount int                    `json:"result_count"`
		Items       []models.RecipeSummary `json:"items"`
		Rows        [][]models.RecipeSummary
		Page        struct {
			CurrentPage int `json:"current_page"`
			TotalPages  int `json:"total_pages"`
		} `json:"page"`
	} `json:"view"`
}

type sessionFixture struct {
	router   *gin.Engine
	sessions *service.SessionService
	session  *service.Session
}

func setupSessionRouter(t *testing.T, mode models.SearchMode, provider *testutil.MockRecipeProvider) *sessionFixture {
	t.Helper()
	sessions := service.NewSessionService(newTestConfig(), provider, nil)
	session, _, err := sessions.CreateSession(mode, "")
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}

	h := NewSessionHandler(sessions)
	r := gin.New()
	g := r.Group("/sessions/:session_id", setSession(session))
	g.GET("", h.GetView)
	g.POST("/search", h.SubmitQuery)
	g.PUT("/page", h.GoToPage)
	g.POST("/reset", h.ResetSession)
	g.GET("/rows", h.GetRows)
	g.DELETE("", h.DeleteSession)
	return &sessionFixture{router: r, sessions: sessions, session: session}
}

func (f *sessionFixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, viewBody) {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, "/sessions/"+f.session.ID+path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var vb viewBody
	json.Unmarshal(w.Body.Bytes(), &vb)
	return w, vb
}

func textProvider(n int) *testutil.MockRecipeProvider {
	return &testutil.MockRecipeProvider{
		SearchRecipesFunc: func(ctx context.Context, query string, number int) (*spoonacular.SearchResult, error) {
			return &spoonacular.SearchResult{Results: testutil.TestSummaries(n), TotalResults: 86}, nil
		},
	}
}

func TestCreateSession(t *testing.T) {
	sessions := service.NewSessionService(newTestConfig(), &testutil.MockRecipeProvider{}, nil)
	h := NewSessionHandler(sessions)
	r := gin.New()
	r.POST("/sessions", h.CreateSession)

	req := httptest.NewRequest("POST", "/sessions", bytes.NewReader([]byte(`{"mode":"random"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d. body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	var body struct {
		SessionID string `json:"session_id"`
		Token     string `json:"token"`
		View      struct {
			Mode     string `json:"mode"`
			ViewMode string `json:"view_mode"`
			Layout   string `json:"layout"`
		} `json:"view"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.SessionID == "" || body.Token == "" {
		t.Errorf("missing session_id or token: %s", w.Body.String())
	}
	if body.View.Mode != "random" || body.View.ViewMode != "input" || body.View.Layout != "rows" {
		t.Errorf("view = %+v", body.View)
	}
	if _, err := sessions.GetSession(body.SessionID); err != nil {
		t.Errorf("session not registered: %v", err)
	}
}

func TestCreateSession_BadMode(t *testing.T) {
	sessions := service.NewSessionService(newTestConfig(), &testutil.MockRecipeProvider{}, nil)
	r := gin.New()
	r.POST("/sessions", NewSessionHandler(sessions).CreateSession)

	for _, body := range []string{`{}`, `{"mode":"nearby"}`, `not json`} {
		req := httptest.NewRequest("POST", "/sessions", bytes.NewReader([]byte(body)))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want %d", body, w.Code, http.StatusBadRequest)
		}
	}
}

func TestSubmitQuery_TextPagination(t *testing.T) {
	f := setupSessionRouter(t, models.TextSearchMode, textProvider(10))

	w, vb := f.do(t, "POST", "/search", `{"query":"pasta"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if vb.View.ViewMode != "results" || vb.View.ResultCount != 10 || len(vb.View.Items) != 4 {
		t.Errorf("view = %+v", vb.View)
	}
	if vb.View.Page.CurrentPage != 1 || vb.View.Page.TotalPages != 3 {
		t.Errorf("page = %+v, want 1 of 3", vb.View.Page)
	}

	_, vb = f.do(t, "PUT", "/page", `{"page":3}`)
	if vb.View.Page.CurrentPage != 3 || len(vb.View.Items) != 2 {
		t.Errorf("page 3 = %+v with %d items, want 2 items", vb.View.Page, len(vb.View.Items))
	}
	if vb.View.Items[0].ID != 9 {
		t.Errorf("first item on page 3 = %d, want 9", vb.View.Items[0].ID)
	}
}

func TestSubmitQuery_EmptyQuery(t *testing.T) {
	provider := textProvider(10)
	f := setupSessionRouter(t, models.TextSearchMode, provider)

	w, vb := f.do(t, "POST", "/search", `{"query":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if vb.Error != "Enter something to search for" {
		t.Errorf("error = %q", vb.Error)
	}
	if n := provider.SearchRecipesCalls.Load(); n != 0 {
		t.Errorf("upstream called %d times for empty query", n)
	}
}

func TestSubmitQuery_UpstreamFailure(t *testing.T) {
	provider := &testutil.MockRecipeProvider{
		SearchRecipesFunc: func(ctx context.Context, query string, number int) (*spoonacular.SearchResult, error) {
			return nil, errors.New("timeout")
		},
	}
	f := setupSessionRouter(t, models.TextSearchMode, provider)

	w, vb := f.do(t, "POST", "/search", `{"query":"xyz123"}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
	if vb.Error != "Retype your search" || vb.View.Error != "Retype your search" {
		t.Errorf("errors = %q / %q, want the generic message", vb.Error, vb.View.Error)
	}
	if vb.View.ViewMode != "input" || vb.View.ResultCount != 0 {
		t.Errorf("view = %+v, want input mode with no results", vb.View)
	}
}

func TestSubmitQuery_RandomCount(t *testing.T) {
	var gotNumber int
	provider := &testutil.MockRecipeProvider{
		RandomRecipesFunc: func(ctx context.Context, number int) ([]models.RecipeSummary, error) {
			gotNumber = number
			return testutil.TestSummaries(number), nil
		},
	}
	f := setupSessionRouter(t, models.RandomRecipesMode, provider)

	w, vb := f.do(t, "POST", "/search", `{"count":15}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if gotNumber != 10 {
		t.Errorf("upstream number = %d, want 10", gotNumber)
	}
	if len(vb.View.Rows) != 3 || len(vb.View.Rows[0]) != 4 || len(vb.View.Rows[2]) != 3 {
		t.Errorf("rows = %v, want 4/3/3", vb.View.Rows)
	}
}

func TestGetRows_CustomSizes(t *testing.T) {
	provider := &testutil.MockRecipeProvider{
		SearchByIngredientsFunc: func(ctx context.Context, ingredients string, number int) ([]models.RecipeSummary, error) {
			return testutil.TestSummaries(7), nil
		},
	}
	f := setupSessionRouter(t, models.IngredientSearchMode, provider)
	f.do(t, "POST", "/search", `{"query":"apples, flour"}`)

	req := httptest.NewRequest("GET", "/sessions/"+f.session.ID+"/rows?sizes=2,2", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var body struct {
		Rows [][]models.RecipeSummary `json:"rows"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Rows) != 2 || len(body.Rows[0]) != 2 || len(body.Rows[1]) != 2 {
		t.Errorf("rows = %v, want 2/2", body.Rows)
	}

	req = httptest.NewRequest("GET", "/sessions/"+f.session.ID+"/rows?sizes=a", nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestResetSession(t *testing.T) {
	f := setupSessionRouter(t, models.TextSearchMode, textProvider(5))
	f.do(t, "POST", "/search", `{"query":"pasta"}`)

	w, vb := f.do(t, "POST", "/reset?reason=back", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if vb.View.ViewMode != "input" || vb.View.ResultCount != 0 || vb.View.Query != "" {
		t.Errorf("view after reset = %+v", vb.View)
	}

	if w, _ := f.do(t, "POST", "/reset?reason=sideways", ""); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGoToPage_MissingPage(t *testing.T) {
	f := setupSessionRouter(t, models.TextSearchMode, textProvider(5))
	if w, _ := f.do(t, "PUT", "/page", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestDeleteSession(t *testing.T) {
	f := setupSessionRouter(t, models.TextSearchMode, textProvider(5))

	if w, _ := f.do(t, "DELETE", "", ""); w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if _, err := f.sessions.GetSession(f.session.ID); err == nil {
		t.Error("session still registered after delete")
	}
}

func TestGetView_NoSession(t *testing.T) {
	sessions := service.NewSessionService(newTestConfig(), &testutil.MockRecipeProvider{}, nil)
	r := gin.New()
	r.GET("/sessions/:session_id", setSession(nil), NewSessionHandler(sessions).GetView)

	req := httptest.NewRequest("GET", "/sessions/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
