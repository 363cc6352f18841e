package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/genui-engine/genui/internal/ai"
	"github.com/genui-engine/genui/internal/ai/ollama"
	"github.com/genui-engine/genui/internal/ai/openai"
)

// DefaultSystemPrompt instructs the model to emit raw Tailwind HTML only.
// Overridable per request and via config.
const DefaultSystemPrompt = `You are an expert Senior UI/UX Engineer specialized in modern SaaS dashboards and web applications.
Your goal is to generate extremely high-quality, professional, and visually stunning HTML components using Tailwind CSS.

[STRICT OUTPUT RULES]
1. Return ONLY raw HTML code.
2. NO markdown formatting (DO NOT use ` + "```html or ```" + `).
3. NO explanation or conversational text.
4. Use Tailwind CSS for all styling. Use vibrant colors, glassmorphism, and modern shadows.
5. The UI must be responsive and feel "alive" (hover effects, smooth transitions).
6. All interactive elements (buttons, links) should look clickable but DO NOT include custom JavaScript functions or onclick handlers.
7. If the user interaction says "User pushed [Button Name] button", interpret this as a navigation or state change request and generate the corresponding NEXT screen.`

// maxContextChars caps how much prior HTML is fed back to the model.
const maxContextChars = 5000

var ErrUnknownProvider = errors.New("unknown provider")

// Resolver turns a provider config into a concrete adapter. Injectable so
// tests can substitute a stub.
type Resolver func(cfg ai.ProviderConfig) (ai.Provider, error)

// DefaultResolver maps provider families onto the two wire adapters: the
// openai, gemini and local families all speak the OpenAI-compatible shape,
// ollama speaks its native API.
func DefaultResolver(cfg ai.ProviderConfig) (ai.Provider, error) {
	switch cfg.Provider {
	case ai.FamilyOpenAI:
		return openai.New(cfg.APIKey, cfg.BaseURL), nil
	case ai.FamilyGemini:
		base := cfg.BaseURL
		if base == "" {
			base = "https://generativelanguage.googleapis.com/v1beta/openai"
		}
		return openai.New(cfg.APIKey, base), nil
	case ai.FamilyLocal:
		base := cfg.BaseURL
		if base == "" {
			base = "http://localhost:1234/v1"
		}
		return openai.New(cfg.APIKey, base), nil
	case ai.FamilyOllama:
		return ollama.New(cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// Request is one prompt-to-HTML generation.
type Request struct {
	Prompt       string
	Context      string // prior HTML fed back for iterative refinement
	SystemPrompt string // optional override of DefaultSystemPrompt
	Config       ai.ProviderConfig
}

// Result carries the extracted HTML and the untouched model reply.
type Result struct {
	HTML string
	Raw  string
}

// Service builds the message sequence, invokes the provider adapter and
// extracts the HTML payload from the completion.
type Service struct {
	systemPrompt string
	resolve      Resolver
}

func NewService(systemPrompt string, resolve Resolver) *Service {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if resolve == nil {
		resolve = DefaultResolver
	}
	return &Service{systemPrompt: systemPrompt, resolve: resolve}
}

func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	provider, err := s.resolve(req.Config)
	if err != nil {
		return Result{}, err
	}
	raw, err := provider.Complete(ctx, req.Config.Model, s.buildMessages(req))
	if err != nil {
		return Result{}, err
	}
	html, err := ExtractHTML(raw)
	if err != nil {
		return Result{}, err
	}
	return Result{HTML: html, Raw: raw}, nil
}

// ListModels resolves the adapter for cfg and asks it for its model names.
func (s *Service) ListModels(ctx context.Context, cfg ai.ProviderConfig) ([]string, error) {
	provider, err := s.resolve(cfg)
	if err != nil {
		return nil, err
	}
	return provider.ListModels(ctx)
}

func (s *Service) buildMessages(req Request) []ai.Message {
	system := req.SystemPrompt
	if system == "" {
		system = s.systemPrompt
	}
	user := fmt.Sprintf("[User Action/Intent]: %s\n", req.Prompt)
	if req.Context != "" {
		ctx := req.Context
		if len(ctx) > maxContextChars {
			ctx = ctx[:maxContextChars]
		}
		user += fmt.Sprintf("\n[Current HTML Context]:\n```html\n%s\n```\n", ctx)
	}
	user += "\nUpdate the UI based on the user's action. Maintain consistent branding and layout."
	return []ai.Message{
		{Role: ai.RoleSystem, Content: system},
		{Role: ai.RoleUser, Content: user},
	}
}
