package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/genui-engine/genui/internal/ai"
)

type Config struct {
	Port            string `yaml:"port"`
	DefaultProvider string `yaml:"default_provider"`
	DefaultModel    string `yaml:"default_model"`
	SystemPrompt    string `yaml:"system_prompt"`
	OpenAIKey       string `yaml:"openai_api_key"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	GeminiKey       string `yaml:"gemini_api_key"`
	GeminiBaseURL   string `yaml:"gemini_base_url"`
	LocalBaseURL    string `yaml:"local_base_url"`
	OllamaHost      string `yaml:"ollama_host"`
	HistoryBackend  string `yaml:"history_backend"` // "json" or "sqlite"
	LogDir          string `yaml:"log_dir"`
}

// Load reads the optional YAML config file (path argument, else GENUI_CONFIG,
// else ./genui.yaml), lets environment variables override it, and fills
// defaults. A missing file is fine; a malformed one is an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv("GENUI_CONFIG")
	}
	if path == "" {
		path = "genui.yaml"
	}

	var c Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// no config file, env and defaults only
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	c.Port = getenv("PORT", c.Port)
	c.DefaultProvider = getenv("DEFAULT_PROVIDER", c.DefaultProvider)
	c.DefaultModel = getenv("DEFAULT_MODEL", c.DefaultModel)
	c.SystemPrompt = getenv("SYSTEM_PROMPT", c.SystemPrompt)
	c.OpenAIKey = getenv("OPENAI_API_KEY", c.OpenAIKey)
	c.OpenAIBaseURL = getenv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.GeminiKey = getenv("GEMINI_API_KEY", c.GeminiKey)
	c.GeminiBaseURL = getenv("GEMINI_BASE_URL", c.GeminiBaseURL)
	c.LocalBaseURL = getenv("LOCAL_BASE_URL", c.LocalBaseURL)
	c.OllamaHost = getenv("OLLAMA_HOST", c.OllamaHost)
	c.HistoryBackend = getenv("HISTORY_BACKEND", c.HistoryBackend)
	c.LogDir = getenv("LOG_DIR", c.LogDir)

	if c.Port == "" {
		c.Port = "8080"
	}
	if c.DefaultProvider == "" {
		c.DefaultProvider = ai.FamilyOpenAI
	}
	if c.DefaultModel == "" {
		c.DefaultModel = "gpt-4o"
	}
	if c.HistoryBackend == "" {
		c.HistoryBackend = "json"
	}
	if c.LogDir == "" {
		c.LogDir = "generated_logs"
	}
	return c, nil
}

// KeyFor returns the configured API key for a provider family.
func (c Config) KeyFor(provider string) string {
	switch provider {
	case ai.FamilyOpenAI:
		return c.OpenAIKey
	case ai.FamilyGemini:
		return c.GeminiKey
	}
	return ""
}

// BaseURLFor returns the configured base URL for a provider family; empty
// means the adapter's own default applies.
func (c Config) BaseURLFor(provider string) string {
	switch provider {
	case ai.FamilyOpenAI:
		return c.OpenAIBaseURL
	case ai.FamilyGemini:
		return c.GeminiBaseURL
	case ai.FamilyLocal:
		return c.LocalBaseURL
	case ai.FamilyOllama:
		return c.OllamaHost
	}
	return ""
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
