package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all chersey configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Crumbs   CrumbsConfig   `toml:"crumbs"`
	LLM      LLMConfig      `toml:"llm"`
	Search   SearchConfig   `toml:"search"`
	Notion   NotionConfig   `toml:"notion"`
	Auth     AuthConfig     `toml:"auth"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type CrumbsConfig struct {
	Backend   string `toml:"backend"`    // "sqlite" or "redis"
	QueueSize int    `toml:"queue_size"` // pending fire-and-forget awards
}

type LLMConfig struct {
	Provider       string `toml:"provider"` // chat provider: "gemini", "anthropic", "ollama"
	Model          string `toml:"model"`
	GeminiKey      string `toml:"gemini_key"`
	AnthropicKey   string `toml:"anthropic_key"`
	OllamaURL      string `toml:"ollama_url"`
	OllamaModel    string `toml:"ollama_model"`
	ResearchModel  string `toml:"research_model"` // groq model for query generation
	GroqKey        string `toml:"groq_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type SearchConfig struct {
	TavilyKey  string `toml:"tavily_key"`
	Depth      string `toml:"depth"`
	MaxResults int    `toml:"max_results"`
}

type NotionConfig struct {
	Token        string `toml:"token"`
	ParentPageID string `toml:"parent_page_id"`
}

type AuthConfig struct {
	FirebaseAPIKey string `toml:"firebase_api_key"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "0.0.0.0",
			Port: 10000,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Crumbs: CrumbsConfig{
			Backend:   "sqlite",
			QueueSize: 256,
		},
		LLM: LLMConfig{
			Provider:       "gemini",
			Model:          "gemini-2.5-flash-lite",
			OllamaURL:      "http://localhost:11434",
			OllamaModel:    "llama3.2",
			ResearchModel:  "llama-3.1-8b-instant",
			TimeoutSeconds: 120,
		},
		Search: SearchConfig{
			Depth:      "basic",
			MaxResults: 3,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// DefaultPath returns ~/.config/chersey.toml, or CHERSEY_CONFIG when set.
func DefaultPath() (string, error) {
	if p := os.Getenv("CHERSEY_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "chersey.toml"), nil
}

// Read decodes TOML from r on top of the defaults.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Load resolves configuration: defaults, then the TOML file at path (a missing
// file is fine), then .env, then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			cfg, err = Read(f)
			f.Close()
			if err != nil {
				return Config{}, fmt.Errorf("read %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("open config: %w", err)
		}
	}

	// .env never overrides variables already set in the environment.
	_ = godotenv.Load()

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Bind, "CHERSEY_BIND")
	setInt(&c.Server.Port, "PORT")
	setString(&c.Database.Path, "CHERSEY_DB")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")
	setString(&c.Crumbs.Backend, "CRUMBS_BACKEND")
	setString(&c.LLM.GeminiKey, "GEMINI_API_KEY")
	setString(&c.LLM.Model, "GEMINI_MODEL")
	setString(&c.LLM.GroqKey, "GROQ_API_KEY")
	setString(&c.Search.TavilyKey, "TAVILY_API_KEY")
	setString(&c.Notion.Token, "NOTION_TOKEN")
	setString(&c.Notion.ParentPageID, "PARENT_PAGE_ID")
	setString(&c.Auth.FirebaseAPIKey, "FIREBASE_API_KEY")
	setString(&c.Log.Level, "LOG_LEVEL")
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		c.Log.Pretty, _ = strconv.ParseBool(v)
	}

	// An Anthropic key switches the chat provider unless Gemini is configured.
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.AnthropicKey = key
		if c.LLM.GeminiKey == "" {
			c.LLM.Provider = "anthropic"
			c.LLM.Model = ""
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
