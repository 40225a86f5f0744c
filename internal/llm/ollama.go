package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"time"
)

// Ollama calls a local Ollama instance.
type Ollama struct {
	url    string
	model  string
	client *http.Client
}

// NewOllama creates a new Ollama client.
func NewOllama(url, model string, timeout time.Duration) *Ollama {
	return &Ollama{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

func (o *Ollama) body(req Request, stream bool) map[string]any {
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

	options := map[string]any{"num_predict": defaultMaxTokens}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}
	return map[string]any{
		"model":    o.model,
		"messages": messages,
		"stream":   stream,
		"options":  options,
	}
}

type ollamaChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error"`
}

// Complete sends a request to Ollama's chat endpoint.
func (o *Ollama) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := postJSON(ctx, o.client, "ollama", o.url+"/api/chat", nil, o.body(req, false))
	if err != nil {
		return nil, err
	}

	var result ollamaChunk
	if err := decodeJSON(resp, &result); err != nil {
		return nil, err
	}
	return &Response{
		Content:  result.Message.Content,
		Provider: "ollama",
	}, nil
}

// Stream reads Ollama's newline-delimited JSON stream.
func (o *Ollama) Stream(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := postJSON(ctx, o.client, "ollama", o.url+"/api/chat", nil, o.body(req, true))
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		sc := bufio.NewScanner(resp.Body)
		sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for sc.Scan() {
			if len(sc.Bytes()) == 0 {
				continue
			}
			var chunk ollamaChunk
			if err := json.Unmarshal(sc.Bytes(), &chunk); err != nil {
				yield("", fmt.Errorf("ollama stream: decode chunk: %w", err))
				return
			}
			if chunk.Error != "" {
				yield("", fmt.Errorf("ollama stream: %s", chunk.Error))
				return
			}
			if chunk.Message.Content != "" && !yield(chunk.Message.Content, nil) {
				return
			}
			if chunk.Done {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield("", fmt.Errorf("ollama stream: %w", err))
		}
	}
}
