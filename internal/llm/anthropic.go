package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"time"
)

const anthropicAPI = "https://api.anthropic.com/v1/messages"

// Anthropic calls the Anthropic Messages API directly.
type Anthropic struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// NewAnthropic creates a new Anthropic API client.
func NewAnthropic(apiKey, model string, timeout time.Duration) *Anthropic {
	return &Anthropic{
		apiKey: apiKey,
		model:  model,
		url:    anthropicAPI,
		client: &http.Client{Timeout: timeout},
	}
}

func (a *Anthropic) body(req Request, stream bool) map[string]any {
	messages := make([]map[string]string, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "user"
		if m.Role != RoleUser {
			role = "assistant"
		}
		messages = append(messages, map[string]string{"role": role, "content": m.Text})
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	body := map[string]any{
		"model":      a.model,
		"max_tokens": maxTokens,
		"messages":   messages,
	}
	if req.System != "" {
		body["system"] = req.System
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}
	if stream {
		body["stream"] = true
	}
	return body
}

func (a *Anthropic) headers() map[string]string {
	return map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": "2023-06-01",
	}
}

// Complete sends a request to the Anthropic API.
func (a *Anthropic) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := postJSON(ctx, a.client, "anthropic", a.url, a.headers(), a.body(req, false))
	if err != nil {
		return nil, err
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		return nil, err
	}

	text := ""
	if len(result.Content) > 0 {
		text = result.Content[0].Text
	}

	return &Response{
		Content:    text,
		Provider:   "anthropic",
		TokensUsed: result.Usage.InputTokens + result.Usage.OutputTokens,
	}, nil
}

// Stream sends a streaming request and yields each text delta.
func (a *Anthropic) Stream(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := postJSON(ctx, a.client, "anthropic", a.url, a.headers(), a.body(req, true))
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		err = readSSE(resp.Body, func(ev sseEvent) error {
			var msg struct {
				Type  string `json:"type"`
				Delta struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"delta"`
				Error struct {
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.Unmarshal([]byte(ev.Data), &msg); err != nil {
				return fmt.Errorf("decode event: %w", err)
			}
			switch msg.Type {
			case "error":
				return fmt.Errorf("anthropic stream: %s", msg.Error.Message)
			case "content_block_delta":
				if msg.Delta.Type == "text_delta" && msg.Delta.Text != "" && !yield(msg.Delta.Text, nil) {
					return errStopStream
				}
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopStream) {
			yield("", fmt.Errorf("anthropic stream: %w", err))
		}
	}
}
