// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package websearch implements the web-search collaborator against the
// Tavily search API.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwmatthews/deep-research-agent/internal/httputil"
	"github.com/jwmatthews/deep-research-agent/internal/nodes"
	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

// tavilyAPIBase is the Tavily search endpoint. Declared as a var so
// tests can substitute an httptest server.
var tavilyAPIBase = "https://api.tavily.com/search"

// TavilyBackend queries the Tavily search API.
type TavilyBackend struct {
	Config types.SearchConfig
	Client *http.Client
}

// NewTavilyBackend builds a backend with an HTTP client honoring the
// configured timeout.
func NewTavilyBackend(cfg types.SearchConfig) *TavilyBackend {
	return &TavilyBackend{
		Config: cfg,
		Client: &http.Client{Timeout: cfg.Timeout},
	}
}

// tavilyRequest is the request body for the Tavily search API.
type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
	IncludeRaw  bool   `json:"include_raw_content"`
}

// tavilyResponse is the response body from the Tavily search API.
type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

// tavilyResult is a single result record.
type tavilyResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content"`
	Score      float64 `json:"score"`
}

// Search queries the Tavily API and returns raw hit records. The node
// layer owns coercion into typed hits and quality filtering.
func (b *TavilyBackend) Search(ctx context.Context, query string) ([]nodes.RawHit, error) {
	maxResults := b.Config.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	reqBody := tavilyRequest{
		APIKey:      b.Config.APIKey,
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: "advanced",
		IncludeRaw:  true,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIBase, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.Config.UserAgent != "" {
		req.Header.Set("User-Agent", b.Config.UserAgent)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Tavily API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Tavily API returned %d: %s", resp.StatusCode, string(body))
	}

	var tResp tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tResp); err != nil {
		return nil, fmt.Errorf("parsing Tavily response: %w", err)
	}

	hits := make([]nodes.RawHit, 0, len(tResp.Results))
	for _, r := range tResp.Results {
		content := r.RawContent
		if content == "" {
			content = r.Content
		}
		hits = append(hits, nodes.RawHit{
			Title:   r.Title,
			URL:     r.URL,
			Content: content,
			Score:   r.Score,
		})
	}
	return hits, nil
}
