package llm

import (
	"context"
	"net/http"
	"time"
)

const groqAPI = "https://api.groq.com/openai/v1/chat/completions"

// Groq calls Groq's OpenAI-compatible chat completions API.
type Groq struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// NewGroq creates a new Groq API client.
func NewGroq(apiKey, model string, timeout time.Duration) *Groq {
	return &Groq{
		apiKey: apiKey,
		model:  model,
		url:    groqAPI,
		client: &http.Client{Timeout: timeout},
	}
}

// Complete sends a chat completion request.
func (g *Groq) Complete(ctx context.Context, req Request) (*Response, error) {
	messages := make([]map[string]string, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	for _, m := range req.Messages {
		role := "user"
		if m.Role != RoleUser {
			role = "assistant"
		}
		messages = append(messages, map[string]string{"role": role, "content": m.Text})
	}

	body := map[string]any{
		"model":    g.model,
		"messages": messages,
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}

	resp, err := postJSON(ctx, g.client, "groq", g.url,
		map[string]string{"Authorization": "Bearer " + g.apiKey}, body)
	if err != nil {
		return nil, err
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		return nil, err
	}

	text := ""
	if len(result.Choices) > 0 {
		text = result.Choices[0].Message.Content
	}
	return &Response{
		Content:    text,
		Provider:   "groq",
		TokensUsed: result.Usage.TotalTokens,
	}, nil
}
