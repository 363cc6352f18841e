package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/genui-engine/genui/internal/ai"
)

// Client talks to any OpenAI-compatible endpoint: api.openai.com, Gemini's
// OpenAI shim, or a local server such as LM Studio. BaseURL includes the
// version prefix (e.g. https://api.openai.com/v1).
type Client struct {
	APIKey  string
	BaseURL string
	http    *http.Client
}

func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(NormalizeBaseURL(baseURL), "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// NormalizeBaseURL repairs hand-typed base URLs: it restores a missing
// scheme, fixes the common "ttp(s)://" typo, and appends the /openai suffix
// that Gemini's OpenAI-compatible endpoint requires.
func NormalizeBaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return u
	}
	if strings.HasPrefix(u, "ttp://") || strings.HasPrefix(u, "ttps://") {
		u = "h" + u
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "http://" + u
	}
	if strings.Contains(u, "generativelanguage.googleapis.com") && !strings.Contains(u, "/openai") {
		u = strings.TrimRight(u, "/") + "/openai"
	}
	return u
}

func (c *Client) Complete(ctx context.Context, model string, messages []ai.Message) (string, error) {
	payload := map[string]any{
		"model":       model,
		"messages":    messages,
		"temperature": 0.4,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ai.ErrUnreachable, err)
	}
	c.headers(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ai.ErrUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%w: status %d", ai.ErrAuth, resp.StatusCode)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("%w: status %d", ai.ErrBadResponse, resp.StatusCode)
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ai.ErrBadResponse, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ai.ErrBadResponse)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrUnreachable, err)
	}
	c.headers(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: status %d", ai.ErrAuth, resp.StatusCode)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: status %d", ai.ErrBadResponse, resp.StatusCode)
	}
	var out struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrBadResponse, err)
	}
	models := make([]string, 0, len(out.Data))
	for _, m := range out.Data {
		models = append(models, m.ID)
	}
	return models, nil
}

// headers sets content type and, when a key is present, bearer auth. Local
// servers typically ignore the Authorization header entirely, so an absent
// key simply omits it.
func (c *Client) headers(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
}

var _ ai.Provider = (*Client)(nil)
