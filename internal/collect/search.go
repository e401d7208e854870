package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ppetrenko/veridex/internal/cache"
)

// SearchResult is the top hit returned for one query
type SearchResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchClient queries a SearX-compatible JSON search endpoint
type SearchClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	cache      cache.Cache
	cacheTTL   time.Duration
}

// NewSearchClient creates a search client. A nil cache disables caching.
func NewSearchClient(baseURL, userAgent string, timeout time.Duration, c cache.Cache, cacheTTL time.Duration) *SearchClient {
	return &SearchClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		cache:      c,
		cacheTTL:   cacheTTL,
	}
}

// Top returns the first search result for the query, or nil when the
// endpoint returned no results. Transport and decode failures are errors;
// the collector degrades them to a sentinel record.
func (c *SearchClient) Top(ctx context.Context, query string) (*SearchResult, error) {
	key := cache.Key("search:" + query)
	body, ok := c.cachedBody(key)
	if !ok {
		fetched, err := c.fetch(ctx, query)
		if err != nil {
			return nil, err
		}
		body = fetched
		if c.cache != nil {
			_ = c.cache.Set(key, body, c.cacheTTL)
		}
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if len(payload.Results) == 0 {
		return nil, nil
	}
	return &payload.Results[0], nil
}

func (c *SearchClient) cachedBody(key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *SearchClient) fetch(ctx context.Context, query string) ([]byte, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected search status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search body: %w", err)
	}
	return body, nil
}
