package spoonacular

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/windoze95/saltybytes-discover/internal/logger"
	"github.com/windoze95/saltybytes-discover/internal/models"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public Spoonacular endpoint.
	DefaultBaseURL = "https://api.spoonacular.com"

	imageBaseURL = "https://img.spoonacular.com/recipes"

	// Upstream caps number at 100 for list operations.
	maxNumber = 100

	// Error bodies are only logged, so there is no point reading more.
	maxErrorBody = 4096
)

// Client implements RecipeProvider against the Spoonacular REST API.
type Client struct {
	baseURL     string
	credentials Credentials
	httpClient  *http.Client
}

// NewClient creates a Spoonacular client. A zero timeout falls back to 10s.
func NewClient(baseURL string, credentials Credentials, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		credentials: credentials,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// --- Wire types ---

type wireSummary struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	ImageType string `json:"imageType"`
}

type complexSearchResponse struct {
	Results      []wireSummary `json:"results"`
	Offset       int           `json:"offset"`
	Number       int           `json:"number"`
	TotalResults int           `json:"totalResults"`
}

type randomResponse struct {
	Recipes []wireSummary `json:"recipes"`
}

type wireIngredient struct {
	Original string `json:"original"`
	Name     string `json:"name"`
}

type informationResponse struct {
	ID                  int64            `json:"id"`
	Title               string           `json:"title"`
	Image               string           `json:"image"`
	ImageType           string           `json:"imageType"`
	ExtendedIngredients []wireIngredient `json:"extendedIngredients"`
	Summary             string           `json:"summary"`
	ReadyInMinutes      int              `json:"readyInMinutes"`
	Servings            int              `json:"servings"`
	SourceURL           string           `json:"sourceUrl"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- Operations ---

// SearchRecipes runs a free-text search.
func (c *Client) SearchRecipes(ctx context.Context, query string, number int) (*SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("number", strconv.Itoa(clampNumber(number)))

	var resp complexSearchResponse
	if err := c.get(ctx, "search-by-text", "/recipes/complexSearch", params, &resp); err != nil {
		return nil, err
	}

	return &SearchResult{
		Results:      toSummaries(resp.Results),
		TotalResults: resp.TotalResults,
	}, nil
}

// SearchByIngredients finds recipes that use the given comma-separated
// ingredients.
func (c *Client) SearchByIngredients(ctx context.Context, ingredients string, number int) ([]models.RecipeSummary, error) {
	params := url.Values{}
	params.Set("ingredients", ingredients)
	params.Set("number", strconv.Itoa(clampNumber(number)))

	var resp []wireSummary
	if err := c.get(ctx, "search-by-ingredients", "/recipes/findByIngredients", params, &resp); err != nil {
		return nil, err
	}
	return toSummaries(resp), nil
}

// RandomRecipes returns number random recipes.
func (c *Client) RandomRecipes(ctx context.Context, number int) ([]models.RecipeSummary, error) {
	params := url.Values{}
	params.Set("number", strconv.Itoa(clampNumber(number)))

	var resp randomResponse
	if err := c.get(ctx, "random-recipes", "/recipes/random", params, &resp); err != nil {
		return nil, err
	}
	return toSummaries(resp.Recipes), nil
}

// RecipeInformation fetches the full record of one recipe. The summary is
// sanitized before it leaves this package.
func (c *Client) RecipeInformation(ctx context.Context, recipeID int64) (*models.RecipeDetail, error) {
	path := fmt.Sprintf("/recipes/%d/information", recipeID)

	var resp informationResponse
	if err := c.get(ctx, "recipe-detail", path, url.Values{}, &resp); err != nil {
		return nil, err
	}

	ingredients := make([]string, 0, len(resp.ExtendedIngredients))
	for _, ing := range resp.ExtendedIngredients {
		line := strings.TrimSpace(ing.Original)
		if line == "" {
			line = strings.TrimSpace(ing.Name)
		}
		if line != "" {
			ingredients = append(ingredients, line)
		}
	}

	detail := &models.RecipeDetail{
		ID:             resp.ID,
		Title:          resp.Title,
		Image:          imageURL(resp.ID, resp.Image, resp.ImageType),
		Ingredients:    ingredients,
		Summary:        models.SanitizeHTML(resp.Summary),
		ReadyInMinutes: resp.ReadyInMinutes,
		Servings:       resp.Servings,
	}
	if govalidator.IsURL(resp.SourceURL) {
		detail.SourceURL = resp.SourceURL
	}
	return detail, nil
}

// SimilarRecipes returns recipes related to recipeID. The upstream omits
// the image, so it is derived from the id and image type.
func (c *Client) SimilarRecipes(ctx context.Context, recipeID int64, number int) ([]models.RecipeSummary, error) {
	params := url.Values{}
	params.Set("number", strconv.Itoa(clampNumber(number)))

	var resp []wireSummary
	path := fmt.Sprintf("/recipes/%d/similar", recipeID)
	if err := c.get(ctx, "similar-recipes", path, params, &resp); err != nil {
		return nil, err
	}
	return toSummaries(resp), nil
}

// get performs an authenticated GET and decodes a 2xx JSON body into out.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out interface{}) error {
	params.Set("apiKey", c.credentials.APIKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	logger.Get().Debug("spoonacular call",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{Op: op, StatusCode: resp.StatusCode}
		var eResp errorResponse
		if json.Unmarshal(body, &eResp) == nil && eResp.Message != "" {
			statusErr.Message = eResp.Message
		} else {
			statusErr.Message = strings.TrimSpace(string(body))
		}
		if statusErr.QuotaExhausted() {
			logger.Get().Warn("spoonacular quota exhausted",
				zap.String("op", op),
				zap.Int("status", resp.StatusCode),
				zap.String("message", statusErr.Message),
			)
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", op, err)
	}
	return nil
}

func toSummaries(in []wireSummary) []models.RecipeSummary {
	out := make([]models.RecipeSummary, 0, len(in))
	for _, w := range in {
		out = append(out, models.RecipeSummary{
			ID:    w.ID,
			Title: w.Title,
			Image: imageURL(w.ID, w.Image, w.ImageType),
		})
	}
	return out
}

// imageURL keeps a valid absolute image URL, expands a bare file name, and
// otherwise derives the URL from the id and image type.
func imageURL(id int64, image, imageType string) string {
	image = strings.TrimSpace(image)
	switch {
	case image != "" && govalidator.IsURL(image) && strings.Contains(image, "://"):
		return image
	case image != "" && !strings.Contains(image, "/"):
		return fmt.Sprintf("%s/%s", imageBaseURL, image)
	case imageType != "" && id > 0:
		return fmt.Sprintf("%s/%d-312x231.%s", imageBaseURL, id, imageType)
	}
	return ""
}

func clampNumber(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxNumber {
		return maxNumber
	}
	return n
}
