// Package trivia wraps the external trivia question HTTP API.
package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
)

// DefaultBaseURL is the public trivia API endpoint.
const DefaultBaseURL = "https://opentdb.com"

const anyFilter = "any"

// Outcome codes of the question endpoint.
const (
	codeSuccess   = 0
	codeNoResults = 1
)

// Client fetches categories and question batches. The category list is
// cached after the first successful fetch; concurrent first fetches are
// collapsed with singleflight.
type Client struct {
	baseURL string
	http    *http.Client
	sf      singleflight.Group

	mu         sync.RWMutex
	categories []domain.Category
}

// NewClient builds a client for baseURL. A nil httpClient falls back to
// http.DefaultClient; no timeouts are imposed beyond the injected client's.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

type categoriesResponse struct {
	Categories []domain.Category `json:"trivia_categories"`
}

type questionsResponse struct {
	ResponseCode int               `json:"response_code"`
	Results      []domain.Question `json:"results"`
}

// Categories returns the category list in the order the API reports it.
// Failures are returned without retry.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	c.mu.RLock()
	if c.categories != nil {
		cached := c.categories
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("categories", func() (interface{}, error) {
		c.mu.RLock()
		if c.categories != nil {
			cached := c.categories
			c.mu.RUnlock()
			return cached, nil
		}
		c.mu.RUnlock()

		var payload categoriesResponse
		if err := c.getJSON(ctx, c.baseURL+"/api_category.php", &payload); err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.categories = payload.Categories
		c.mu.Unlock()
		return payload.Categories, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Category), nil
}

// FetchQuestions requests a filtered batch of multiple-choice questions.
// Outcome code 0 with results is a success; code 1 or an empty result set
// maps to domain.ErrNoResults; any other code maps to domain.ErrFetchFailed.
// Transport failures are returned wrapped as-is so callers can distinguish
// them from API-level errors.
func (c *Client) FetchQuestions(ctx context.Context, amount int, category, difficulty string) ([]domain.Question, error) {
	query := url.Values{}
	query.Set("amount", strconv.Itoa(amount))
	query.Set("type", "multiple")
	if category != "" && category != anyFilter {
		query.Set("category", category)
	}
	if difficulty != "" && difficulty != anyFilter {
		query.Set("difficulty", difficulty)
	}

	var payload questionsResponse
	if err := c.getJSON(ctx, c.baseURL+"/api.php?"+query.Encode(), &payload); err != nil {
		return nil, err
	}

	switch {
	case payload.ResponseCode == codeSuccess && len(payload.Results) > 0:
		return payload.Results, nil
	case payload.ResponseCode == codeNoResults || len(payload.Results) == 0:
		return nil, domain.ErrNoResults
	default:
		return nil, fmt.Errorf("%w: response code %d", domain.ErrFetchFailed, payload.ResponseCode)
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("trivia api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", domain.ErrFetchFailed, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrFetchFailed, err)
	}
	return nil
}
