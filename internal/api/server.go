package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/opportunity-analyst/internal/config"
)

// Server represents the API server
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer creates a new API server. redisClient may be nil when the report
// cache is disabled.
func NewServer(cfg config.ServerConfig, svc AnalysisService, redisClient *redis.Client) *Server {
	router := SetupRoutes(NewHandlers(svc), NewHealthChecker(svc, redisClient), cfg.AllowedOrigins)

	return &Server{
		config:  cfg,
		handler: router,
	}
}

// Addr is the host:port the server listens on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.GetHost(), strconv.Itoa(s.config.Port))
}

// ListenAndServe starts the HTTP server on Addr.
func (s *Server) ListenAndServe() error {
	s.server = &http.Server{
		Addr:    s.Addr(),
		Handler: s.handler,
		// Report generation can take most of a minute on a slow model.
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
