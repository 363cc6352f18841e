package server

import (
	"github.com/gin-gonic/gin"

	"github.com/genui-engine/genui/internal/config"
	"github.com/genui-engine/genui/internal/generate"
	"github.com/genui-engine/genui/internal/history"
)

// Server wires the generation service and the history store behind the HTTP
// API. It holds no request state; every endpoint is resolved independently.
type Server struct {
	cfg   config.Config
	svc   *generate.Service
	store history.Store
}

func New(cfg config.Config, svc *generate.Service, store history.Store) *Server {
	return &Server{cfg: cfg, svc: svc, store: store}
}

// Router builds the gin engine with middleware and all routes mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger())
	r.Use(CORS())

	r.GET("/ping", s.handlePing)
	r.POST("/generate", s.handleGenerate)
	r.GET("/models", s.handleModels)
	r.GET("/history", s.handleHistory)
	r.GET("/history/:id", s.handleHistoryEntry)

	// Raw artifacts, same as the /logs static mount of the original UI.
	r.Static("/logs", s.cfg.LogDir)

	return r
}
