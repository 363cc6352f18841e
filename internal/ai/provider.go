package ai

import (
	"context"
	"errors"
)

// Message roles as used by the chat-completions wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in a chat-completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Sentinel errors returned by provider adapters. Callers match them with
// errors.Is; the HTTP layer maps them to status codes.
var (
	ErrUnreachable = errors.New("provider unreachable")
	ErrAuth        = errors.New("provider rejected credentials")
	ErrBadResponse = errors.New("provider returned no usable completion")
)

// Provider is a chat-completion backend. Complete returns the raw text of the
// first completion choice; an empty string is a valid result and is left to
// the caller to judge.
type Provider interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}

// Provider families accepted in requests.
const (
	FamilyOpenAI = "openai"
	FamilyGemini = "gemini"
	FamilyLocal  = "local"
	FamilyOllama = "ollama"
)

// ProviderConfig carries the per-request provider selection. Only Provider
// and Model end up in history records.
type ProviderConfig struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
}
