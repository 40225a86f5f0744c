package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/cherseta/chersey/internal/config"
)

// ErrUnavailable is returned when a provider has no credentials configured.
var ErrUnavailable = errors.New("llm provider not configured")

// Role is the speaker of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one conversation turn.
type Message struct {
	Role Role
	Text string
}

// Request is a provider-neutral generation request.
type Request struct {
	System      string // optional system prompt
	Messages    []Message
	Temperature float64 // 0 uses the provider default
	MaxTokens   int     // 0 uses the provider default
}

// Response holds the result of an LLM completion.
type Response struct {
	Content    string
	Provider   string
	TokensUsed int
}

// Client is the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Streamer is a Client that can also yield a reply incrementally. The
// sequence ends after the first error.
type Streamer interface {
	Client
	Stream(ctx context.Context, req Request) iter.Seq2[string, error]
}

// UserPrompt builds a single-turn request.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Text: prompt}},
	}
}

const defaultMaxTokens = 2048

func timeout(cfg config.LLMConfig) time.Duration {
	if cfg.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

// NewClient creates the chat provider selected by cfg.Provider. It returns
// ErrUnavailable when the provider needs a key that is not set.
func NewClient(cfg config.LLMConfig) (Streamer, error) {
	switch cfg.Provider {
	case "gemini", "":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("gemini: %w", ErrUnavailable)
		}
		model := cfg.Model
		if model == "" {
			model = "gemini-2.5-flash-lite"
		}
		return NewGemini(cfg.GeminiKey, model, timeout(cfg)), nil
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic: %w", ErrUnavailable)
		}
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		return NewAnthropic(cfg.AnthropicKey, model, timeout(cfg)), nil
	case "ollama":
		url := cfg.OllamaURL
		if url == "" {
			url = "http://localhost:11434"
		}
		model := cfg.OllamaModel
		if model == "" {
			model = "llama3.2"
		}
		return NewOllama(url, model, timeout(cfg)), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}

// NewResearchClient creates the client used for research query generation:
// Groq when a key is set, otherwise the chat provider.
func NewResearchClient(cfg config.LLMConfig) (Client, error) {
	if cfg.GroqKey != "" {
		model := cfg.ResearchModel
		if model == "" {
			model = "llama-3.1-8b-instant"
		}
		return NewGroq(cfg.GroqKey, model, timeout(cfg)), nil
	}
	return NewClient(cfg)
}
