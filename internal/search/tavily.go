// Package search queries the Tavily web-search API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const tavilyAPI = "https://api.tavily.com/search"

// ErrUnavailable is returned when no API key is configured.
var ErrUnavailable = errors.New("search provider not configured")

// Result is one search hit, passed through to clients unchanged.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Options controls a single search.
type Options struct {
	Depth      string // "basic" or "advanced"
	MaxResults int
}

// Tavily is a Tavily search client.
type Tavily struct {
	apiKey string
	url    string
	client *http.Client
}

// NewTavily creates a Tavily client.
func NewTavily(apiKey string, timeout time.Duration) *Tavily {
	return &Tavily{
		apiKey: apiKey,
		url:    tavilyAPI,
		client: &http.Client{Timeout: timeout},
	}
}

// Search runs one query.
func (t *Tavily) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if t.apiKey == "" {
		return nil, ErrUnavailable
	}

	body, err := json.Marshal(map[string]any{
		"query":        query,
		"search_depth": opts.Depth,
		"max_results":  opts.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tavily api status %d: %s", resp.StatusCode, msg)
	}

	var result struct {
		Results []Result `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result.Results, nil
}
