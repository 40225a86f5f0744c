// Package research turns a block of text into follow-up web searches.
package research

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cherseta/chersey/internal/llm"
	"github.com/cherseta/chersey/internal/logger"
	"github.com/cherseta/chersey/internal/search"
)

const (
	// MaxInputRunes bounds the text sent for query generation.
	MaxInputRunes = 4000
	// MaxQueries is the number of generated queries that are searched.
	MaxQueries = 3

	queryTemperature = 0.3
)

// Searcher runs a single web search.
type Searcher interface {
	Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error)
}

// Agent generates search queries with an LLM and fans them out to a Searcher.
type Agent struct {
	client   *llm.Lazy[llm.Client]
	searcher Searcher
	opts     search.Options
	log      logger.Logger
}

// NewAgent creates an Agent.
func NewAgent(client *llm.Lazy[llm.Client], searcher Searcher, opts search.Options, log logger.Logger) *Agent {
	if opts.Depth == "" {
		opts.Depth = "basic"
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 3
	}
	return &Agent{client: client, searcher: searcher, opts: opts, log: log}
}

// Run returns the search results for up to MaxQueries generated queries, in
// query order. Whitespace-only text returns no results without any calls.
// A failing search is logged and skipped; a failing query generation is
// returned.
func (a *Agent) Run(ctx context.Context, text string) ([]search.Result, error) {
	results := []search.Result{}
	if strings.TrimSpace(text) == "" {
		return results, nil
	}

	client, err := a.client.Get()
	if err != nil {
		return nil, fmt.Errorf("research client: %w", err)
	}

	req := llm.UserPrompt(llm.ResearchSystemPrompt, llm.ResearchQueryPrompt(Truncate(text, MaxInputRunes)))
	req.Temperature = queryTemperature
	resp, err := client.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate queries: %w", err)
	}

	queries := ParseQueries(resp.Content)
	if len(queries) > MaxQueries {
		queries = queries[:MaxQueries]
	}

	for _, q := range queries {
		a.log.Info("research search", logger.String("query", q))
		hits, err := a.searcher.Search(ctx, q, a.opts)
		if err != nil {
			a.log.Warn("research query skipped", logger.String("query", q), logger.Error(err))
			continue
		}
		results = append(results, hits...)
	}
	return results, nil
}

var enumeration = regexp.MustCompile(`^\s*(?:\d+[.)\-\s]+|[-*•]\s+)`)

// ParseQueries splits model output into one query per non-blank line,
// stripping leading list markers such as "1. ", "2) " or "- ".
func ParseQueries(raw string) []string {
	var queries []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		q := strings.TrimSpace(enumeration.ReplaceAllString(line, ""))
		if q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
