// Package notion exports research notes as Notion pages.
package notion

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

const (
	pagesAPI      = "https://api.notion.com/v1/pages"
	notionVersion = "2022-06-28"

	// DefaultTitle is used when an export has no title.
	DefaultTitle = "Chersey Research Log"

	// maxTextLen is Notion's limit for a single rich_text content string.
	maxTextLen = 2000
)

// ErrUnconfigured is returned when the token or parent page is missing.
var ErrUnconfigured = errors.New("notion export not configured")

// Result is the upstream response, relayed as-is.
type Result struct {
	Status int
	Body   []byte
}

// Client creates pages under a fixed parent page.
type Client struct {
	token    string
	parentID string
	url      string
	client   *http.Client
}

// NewClient creates a Notion client.
func NewClient(token, parentPageID string, timeout time.Duration) *Client {
	return &Client{
		token:    token,
		parentID: parentPageID,
		url:      pagesAPI,
		client:   &http.Client{Timeout: timeout},
	}
}

// Configured reports whether exports can be attempted.
func (c *Client) Configured() bool {
	return c.token != "" && c.parentID != ""
}

// Export creates a page with title and one paragraph block per 2000-character
// chunk of content. Non-2xx responses are returned in Result, not as errors.
func (c *Client) Export(ctx context.Context, title, content string) (*Result, error) {
	if !c.Configured() {
		return nil, ErrUnconfigured
	}
	if title == "" {
		title = DefaultTitle
	}

	body, err := json.Marshal(pageRequest(c.parentID, title, content))
	if err != nil {
		return nil, fmt.Errorf("marshal page: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", notionVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notion api: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Result{Status: resp.StatusCode, Body: data}, nil
}

type text struct {
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
}

func richText(s string) []text {
	var t text
	t.Text.Content = s
	return []text{t}
}

func pageRequest(parentID, title, content string) map[string]any {
	children := []map[string]any{}
	for _, chunk := range chunk(content, maxTextLen) {
		children = append(children, map[string]any{
			"object":    "block",
			"type":      "paragraph",
			"paragraph": map[string]any{"rich_text": richText(chunk)},
		})
	}
	return map[string]any{
		"parent": map[string]string{"page_id": parentID},
		"properties": map[string]any{
			"title": map[string]any{"title": richText(title)},
		},
		"children": children,
	}
}

// chunk splits s into pieces of at most n runes. An empty string yields one
// empty piece so the page always has a paragraph.
func chunk(s string, n int) []string {
	r := []rune(s)
	if len(r) <= n {
		return []string{s}
	}
	var out []string
	for len(r) > 0 {
		end := min(n, len(r))
		out = append(out, string(r[:end]))
		r = r[end:]
	}
	return out
}
