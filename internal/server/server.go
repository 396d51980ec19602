// Package server exposes a service.Backend as an HTTP/JSON /tasks resource
// collection, the protocol spoken by the remote backend.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tasklist/internal/logging"
	"tasklist/internal/service"
)

// ShutdownTimeout bounds graceful shutdown after the run context ends.
const ShutdownTimeout = 5 * time.Second

// Server serves the task collection of a single backend.
type Server struct {
	backend service.Backend
	logger  *slog.Logger
	router  *gin.Engine
}

// New creates a server over backend. A nil logger discards output.
func New(backend service.Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		backend: backend,
		logger:  logger,
		router:  router,
	}
	router.Use(s.logRequests)

	router.GET("/health", s.handleHealth)

	tasks := router.Group("/tasks")
	{
		tasks.GET("", s.handleList)
		tasks.POST("", s.handleCreate)
		tasks.PUT("/:id", s.handleUpdate)
		tasks.DELETE("/:id", s.handleDelete)
	}

	return s
}

// Handler returns the HTTP handler (for testing).
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("serving tasks", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"request_id", c.GetHeader("X-Request-Id"),
		"duration", time.Since(start),
	)
}
