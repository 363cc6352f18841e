package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/genui-engine/genui/internal/config"
	"github.com/genui-engine/genui/internal/generate"
	"github.com/genui-engine/genui/internal/history"
	"github.com/genui-engine/genui/internal/server"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
		configFlag  = flag.String("config", "", "Path to YAML config file (overrides GENUI_CONFIG)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`GenUI Engine - prompt-to-HTML generation server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)
  --config PATH   YAML config file (default: ./genui.yaml or GENUI_CONFIG)

Environment Variables:
  PORT                Port to listen on (default: 8080)
  DEFAULT_PROVIDER    Provider family: openai, gemini, local or ollama (default: openai)
  DEFAULT_MODEL       Model to use when the request names none (default: gpt-4o)
  SYSTEM_PROMPT       Override the built-in HTML-generation system prompt
  OPENAI_API_KEY      OpenAI API key
  OPENAI_BASE_URL     Custom OpenAI-compatible base URL
  GEMINI_API_KEY      Gemini API key (sent as bearer to the OpenAI shim)
  GEMINI_BASE_URL     Custom Gemini base URL
  LOCAL_BASE_URL      Local OpenAI-compatible server (default: http://localhost:1234/v1)
  OLLAMA_HOST         Ollama host URL (default: http://localhost:11434)
  HISTORY_BACKEND     History backend: json or sqlite (default: json)
  LOG_DIR             Directory for history log and HTML artifacts (default: ./generated_logs)

Examples:
  %s                  Start server with default settings
  %s --port 3000      Start server on port 3000
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("GenUI Engine %s\n", version)
		return
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	_ = godotenv.Load()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *portFlag != "" {
		cfg.Port = *portFlag
	}

	var store history.Store
	switch cfg.HistoryBackend {
	case "sqlite":
		sq, err := history.NewSQLiteStore(cfg.LogDir)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open sqlite history store")
		}
		defer sq.Close()
		store = sq
	case "json":
		fs, err := history.NewFileStore(cfg.LogDir)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open history store")
		}
		store = fs
	default:
		log.Fatal().Str("backend", cfg.HistoryBackend).Msg("unknown history backend")
	}

	svc := generate.NewService(cfg.SystemPrompt, nil)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.New(cfg, svc, store).Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("port", cfg.Port).
		Str("provider", cfg.DefaultProvider).
		Str("model", cfg.DefaultModel).
		Str("history", cfg.HistoryBackend).
		Msg("genui server listening")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("shutdown complete")
}
