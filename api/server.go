// Package api provides the HTTP REST API for FloatChat.
//
// Endpoints:
//
//	POST /api/chat    → answer one question within a session
//	GET  /api/health  → liveness and database readiness
//
// File structure:
//   - server.go: server setup and routing
//   - middleware.go: HTTP middleware (logging, recovery)
//   - chat.go: chat endpoint
//   - health.go: health endpoint
//   - response.go: JSON response helpers
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zynfvr/sih2/internal/answer"
)

// Server is the HTTP server for the FloatChat REST API.
type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger

	chat   *ChatHandler
	health *HealthHandler
}

// NewServer creates an HTTP server with all routes registered.
func NewServer(svc *answer.Service, pool *pgxpool.Pool, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("answer service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	s := &Server{
		mux:    mux,
		logger: logger,
		chat:   NewChatHandler(svc, logger),
		health: NewHealthHandler(pool, logger),
	}

	s.chat.RegisterRoutes(mux)
	s.health.RegisterRoutes(mux)

	return s, nil
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger))
}
