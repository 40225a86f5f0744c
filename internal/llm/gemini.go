package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"time"
)

const geminiAPI = "https://generativelanguage.googleapis.com/v1beta"

// Gemini calls the Google Generative Language API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGemini creates a new Gemini API client.
func NewGemini(apiKey, model string, timeout time.Duration) *Gemini {
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiAPI,
		client:  &http.Client{Timeout: timeout},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (r *geminiResponse) text() string {
	var b strings.Builder
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

func (g *Gemini) body(req Request) map[string]any {
	contents := make([]geminiContent, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "user"
		if m.Role != RoleUser {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Text}}})
	}

	body := map[string]any{"contents": contents}
	if req.System != "" {
		body["systemInstruction"] = geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	gen := map[string]any{}
	if req.Temperature > 0 {
		gen["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		gen["maxOutputTokens"] = req.MaxTokens
	}
	if len(gen) > 0 {
		body["generationConfig"] = gen
	}
	return body
}

func (g *Gemini) headers() map[string]string {
	return map[string]string{"x-goog-api-key": g.apiKey}
}

// Complete sends a request to the generateContent endpoint.
func (g *Gemini) Complete(ctx context.Context, req Request) (*Response, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	resp, err := postJSON(ctx, g.client, "gemini", url, g.headers(), g.body(req))
	if err != nil {
		return nil, err
	}

	var result geminiResponse
	if err := decodeJSON(resp, &result); err != nil {
		return nil, err
	}
	return &Response{
		Content:    result.text(),
		Provider:   "gemini",
		TokensUsed: result.UsageMetadata.TotalTokenCount,
	}, nil
}

// Stream sends a request to streamGenerateContent and yields each chunk's text.
func (g *Gemini) Stream(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", g.baseURL, g.model)
		resp, err := postJSON(ctx, g.client, "gemini", url, g.headers(), g.body(req))
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		err = readSSE(resp.Body, func(ev sseEvent) error {
			var chunk geminiResponse
			if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
				return fmt.Errorf("decode chunk: %w", err)
			}
			if chunk.Error != nil {
				return fmt.Errorf("gemini stream: %s", chunk.Error.Message)
			}
			if text := chunk.text(); text != "" && !yield(text, nil) {
				return errStopStream
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopStream) {
			yield("", fmt.Errorf("gemini stream: %w", err))
		}
	}
}
