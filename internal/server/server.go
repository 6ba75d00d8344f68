package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/agentics-ai/kansa/internal/emitter"
	"github.com/agentics-ai/kansa/internal/health"
	"github.com/agentics-ai/kansa/internal/schema"
)

// Server is the kansa HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServerConfig holds all dependencies and configuration for creating a Server.
type ServerConfig struct {
	SchemaEngine *schema.Engine
	HealthEngine *health.Engine
	Emitter      *emitter.Emitter
	Logger       *slog.Logger

	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	MaxRequestBodyBytes int64
	CheckTimeout        time.Duration
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		SchemaEngine: cfg.SchemaEngine,
		HealthEngine: cfg.HealthEngine,
		Emitter:      cfg.Emitter,
		Logger:       cfg.Logger,
		Version:      cfg.Version,
		MaxBodyBytes: cfg.MaxRequestBodyBytes,
		CheckTimeout: cfg.CheckTimeout,
	})

	mux := http.NewServeMux()

	// Plain evaluation endpoints.
	mux.HandleFunc("POST /api/v1/schema/validate", h.HandleValidateSchema)
	mux.HandleFunc("POST /api/v1/schema/check", h.HandleSchemaCheck)
	mux.HandleFunc("POST /api/v1/adapters/check", h.HandleCheckAdapters)

	// Instrumented endpoints: same evaluations inside an execution span tree.
	mux.HandleFunc("POST /api/v1/execution/schema/validate", h.HandleExecutionValidateSchema)
	mux.HandleFunc("POST /api/v1/execution/adapters/check", h.HandleExecutionCheckAdapters)

	// Health (no auth, no instrumentation).
	mux.HandleFunc("GET /health", h.HandleHealth)

	// Middleware chain (outermost executes first):
	// request ID → security headers → tracing → logging → recovery → handler.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler: handler,
		logger:  cfg.Logger,
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
