package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/genui-engine/genui/internal/ai"
	"github.com/genui-engine/genui/internal/generate"
	"github.com/genui-engine/genui/internal/history"
)

type generateRequest struct {
	Prompt       string `json:"prompt"`
	Context      string `json:"context"`
	SystemPrompt string `json:"systemPrompt"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	BaseURL      string `json:"baseUrl"`
	APIKey       string `json:"apiKey"`
}

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "GenUI server is running", "time": time.Now().UTC()})
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": "validation"})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required", "kind": "validation"})
		return
	}

	cfg := s.providerConfig(req.Provider, req.Model, req.BaseURL, req.APIKey)
	res, err := s.svc.Generate(c.Request.Context(), generate.Request{
		Prompt:       req.Prompt,
		Context:      req.Context,
		SystemPrompt: req.SystemPrompt,
		Config:       cfg,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	rec, err := s.store.Append(history.Record{
		Prompt:   req.Prompt,
		Provider: cfg.Provider,
		Model:    cfg.Model,
		Title:    title(req.Prompt),
	}, res.HTML)
	if err != nil {
		log.Error().Err(err).Msg("history append failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist generation", "kind": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": rec.ID, "html": res.HTML})
}

func (s *Server) handleModels(c *gin.Context) {
	cfg := s.providerConfig(c.Query("provider"), "", c.Query("baseUrl"), c.Query("apiKey"))
	models, err := s.svc.ListModels(c.Request.Context(), cfg)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

func (s *Server) handleHistory(c *gin.Context) {
	records, err := s.store.List()
	if err != nil {
		s.fail(c, err)
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (s *Server) handleHistoryEntry(c *gin.Context) {
	id := c.Param("id")
	html, err := s.store.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "html": html})
}

// providerConfig fills request-level provider settings with server defaults.
func (s *Server) providerConfig(provider, model, baseURL, apiKey string) ai.ProviderConfig {
	if provider == "" {
		provider = s.cfg.DefaultProvider
	}
	if model == "" {
		model = s.cfg.DefaultModel
	}
	if baseURL == "" {
		baseURL = s.cfg.BaseURLFor(provider)
	}
	if apiKey == "" {
		apiKey = s.cfg.KeyFor(provider)
	}
	return ai.ProviderConfig{Provider: provider, BaseURL: baseURL, APIKey: apiKey, Model: model}
}

// fail maps the error taxonomy onto status codes and a machine-readable kind
// so callers can tell a provider problem from bad input from a lookup miss.
func (s *Server) fail(c *gin.Context, err error) {
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, generate.ErrUnknownProvider):
		status, kind = http.StatusBadRequest, "validation"
	case errors.Is(err, ai.ErrAuth):
		status, kind = http.StatusUnauthorized, "provider_auth"
	case errors.Is(err, ai.ErrUnreachable):
		status, kind = http.StatusBadGateway, "provider_unreachable"
	case errors.Is(err, ai.ErrBadResponse):
		status, kind = http.StatusBadGateway, "provider_bad_response"
	case errors.Is(err, generate.ErrNoHTML):
		status, kind = http.StatusBadGateway, "extraction_failed"
	case errors.Is(err, history.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	}
	if status >= 500 {
		log.Error().Str("request_id", c.GetString("request_id")).Err(err).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}

func title(prompt string) string {
	const max = 80
	if len(prompt) <= max {
		return prompt
	}
	return prompt[:max]
}
